package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/cache"
	"github.com/tallysheet/tally/internal/report"
)

// ReportRequest carries the query parameters of a report request.
type ReportRequest struct {
	From string `validate:"required,datefmt"`
	To   string `validate:"required,datefmt"`
}

// GetReport aggregates the user's completed entries over [from, to].
//
// Responses: 200 with the report (JSON, or plain text with ?format=text),
// 204 when no entry qualifies, 422 when the qualifying entries mix
// currencies and ?allow_mixed=1 was not given. Mixed-currency reports sum
// amounts without conversion and only name the plurality currency, so they
// must be requested explicitly.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	req := ReportRequest{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	user := currentUser(r)
	entries, err := h.store.Entries(r.Context(), cache.Query{
		UserID: user.ID,
		From:   req.From,
		To:     req.To,
	})
	if err != nil {
		h.log.Error("listing entries for report failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}

	qualifying := report.Filter(entries, req.From, req.To)
	if r.URL.Query().Get("allow_mixed") != "1" {
		if err := report.ValidateSingleCurrency(qualifying); err != nil {
			if errors.Is(err, report.ErrMixedCurrencies) {
				h.writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
		}
	}

	rep := report.Aggregate(entries, req.From, req.To)
	if rep == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(report.FormatText(rep)))
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}
