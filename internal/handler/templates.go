package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/model"
)

// TemplateRequest is the payload for creating an entry template.
type TemplateRequest struct {
	Name       string  `json:"name" validate:"required,min=1"`
	StartTime  string  `json:"start_time" validate:"omitempty,clock"`
	EndTime    string  `json:"end_time" validate:"omitempty,clock"`
	BreakTime  int     `json:"break_time" validate:"gte=0"`
	HourlyRate float64 `json:"hourly_rate" validate:"gte=0"`
	Currency   string  `json:"currency" validate:"required,currency"`
}

// ListTemplates returns the user's entry templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.backend.ListTemplates(r.Context(), currentUser(r).ID)
	if err != nil {
		h.log.Error("listing templates failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	if templates == nil {
		templates = []model.Template{}
	}
	h.writeJSON(w, http.StatusOK, templates)
}

// CreateTemplate stores a new template for the user.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error("failed to decode json", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeValidationError(w, err)
		return
	}

	created, err := h.backend.CreateTemplate(r.Context(), model.Template{
		UserID:     currentUser(r).ID,
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		BreakTime:  req.BreakTime,
		HourlyRate: req.HourlyRate,
		Currency:   req.Currency,
	})
	if err != nil {
		h.log.Error("creating template failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// DeleteTemplate removes a template.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.backend.DeleteTemplate(r.Context(), id); err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "template not found")
			return
		}
		h.log.Error("deleting template failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyTemplate instantiates a template as a new entry. The date defaults
// to today and can be overridden with ?date=YYYY-MM-DD.
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id := chi.URLParam(r, "id")

	tmpl, err := h.backend.GetTemplate(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "template not found")
			return
		}
		h.log.Error("fetching template failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	created, err := h.store.CreateEntry(r.Context(), tmpl.Entry(user.ID, date))
	if err != nil {
		h.log.Error("applying template failed", zap.Error(err))
		h.writeError(w, http.StatusBadGateway, "persistence service unavailable")
		return
	}
	h.writeJSON(w, http.StatusCreated, entryResponse(created))
}
