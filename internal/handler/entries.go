package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/cache"
	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

// EntryRequest is the payload for creating or updating a time entry.
type EntryRequest struct {
	Date       string  `json:"date" validate:"required,datefmt"`
	StartTime  string  `json:"start_time" validate:"required,clock"`
	EndTime    string  `json:"end_time" validate:"omitempty,clock"`
	BreakTime  int     `json:"break_time" validate:"gte=0"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
	Currency   string  `json:"currency" validate:"required,currency"`
}

func (req EntryRequest) entry(userID string) model.TimeEntry {
	return model.TimeEntry{
		UserID:     userID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		BreakTime:  req.BreakTime,
		HourlyRate: req.HourlyRate,
		Currency:   req.Currency,
	}
}

// EntryResponse is a time entry decorated with its computed billing.
// Hours and Pay are absent while the entry is in progress.
type EntryResponse struct {
	model.TimeEntry
	InProgress bool     `json:"in_progress"`
	Hours      *float64 `json:"hours,omitempty"`
	Pay        *float64 `json:"pay,omitempty"`
}

func entryResponse(e model.TimeEntry) EntryResponse {
	resp := EntryResponse{TimeEntry: e, InProgress: e.InProgress()}
	if pay, ok := timecalc.EntryPay(e); ok {
		resp.Hours = &pay.Hours
		resp.Pay = &pay.Amount
	}
	return resp
}

// EntryDefaults is the prefill for a new entry form, taken from the user's
// most recent entry.
type EntryDefaults struct {
	HourlyRate float64 `json:"hourly_rate"`
	Currency   string  `json:"currency"`
	BreakTime  int     `json:"break_time"`
}

// ListEntries returns the user's entries, optionally bounded by ?from/?to.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	q := cache.Query{
		UserID: user.ID,
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
	}

	entries, err := h.store.Entries(r.Context(), q)
	if err != nil {
		h.log.Error("listing entries failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}

	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// CreateEntry stores a new time entry for the user.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	created, err := h.store.CreateEntry(r.Context(), req.entry(currentUser(r).ID))
	if err != nil {
		h.log.Error("creating entry failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	h.writeJSON(w, http.StatusCreated, entryResponse(created))
}

// UpdateEntry overwrites an existing entry.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	updated, err := h.store.UpdateEntry(r.Context(), id, req.entry(currentUser(r).ID))
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		h.log.Error("updating entry failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, entryResponse(updated))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteEntry(r.Context(), currentUser(r).ID, id); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		h.log.Error("deleting entry failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EntryDefaults returns prefill values for a new entry, mirroring the most
// recent entry's rate, currency and break. First-time users get the plain
// defaults.
func (h *Handler) EntryDefaults(w http.ResponseWriter, r *http.Request) {
	recent, err := h.backend.RecentEntry(r.Context(), currentUser(r).ID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			h.writeJSON(w, http.StatusOK, EntryDefaults{Currency: "USD"})
			return
		}
		h.log.Error("fetching entry defaults failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	h.writeJSON(w, http.StatusOK, EntryDefaults{
		HourlyRate: recent.HourlyRate,
		Currency:   recent.Currency,
		BreakTime:  recent.BreakTime,
	})
}
