// Package handler contains the HTTP handlers for the timesheet API.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/apperror"
	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/cache"
	"github.com/tallysheet/tally/internal/model"
	"github.com/tallysheet/tally/internal/timecalc"
)

// ClockValidator validates 24-hour HH:MM time-of-day strings.
var ClockValidator = func(fl validator.FieldLevel) bool {
	_, err := timecalc.ParseClock(fl.Field().String())
	return err == nil
}

// DateValidator validates ISO YYYY-MM-DD calendar dates.
var DateValidator = func(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

// CurrencyValidator validates codes against the supported currency set.
var CurrencyValidator = func(fl validator.FieldLevel) bool {
	return model.ValidCurrency(fl.Field().String())
}

// NewValidator returns a validator with the API's custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clock", ClockValidator)
	_ = v.RegisterValidation("datefmt", DateValidator)
	_ = v.RegisterValidation("currency", CurrencyValidator)
	return v
}

// EntryStore is the cached entry collection the handlers mutate through.
type EntryStore interface {
	Entries(ctx context.Context, q cache.Query) ([]model.TimeEntry, error)
	CreateEntry(ctx context.Context, e model.TimeEntry) (model.TimeEntry, error)
	UpdateEntry(ctx context.Context, id string, e model.TimeEntry) (model.TimeEntry, error)
	DeleteEntry(ctx context.Context, userID, id string) error
}

// Backend is the slice of the backend client the handlers use directly:
// auth resolution, prefill defaults and template storage.
type Backend interface {
	CurrentUser(ctx context.Context) (backend.User, error)
	RecentEntry(ctx context.Context, userID string) (model.TimeEntry, error)
	ListTemplates(ctx context.Context, userID string) ([]model.Template, error)
	GetTemplate(ctx context.Context, userID, id string) (model.Template, error)
	CreateTemplate(ctx context.Context, t model.Template) (model.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// Handler wraps the HTTP handlers with their collaborators.
type Handler struct {
	log      *zap.Logger
	store    EntryStore
	backend  Backend
	validate *validator.Validate
}

// New creates a new Handler instance.
func New(log *zap.Logger, store EntryStore, b Backend, v *validator.Validate) *Handler {
	return &Handler{log: log, store: store, backend: b, validate: v}
}

// Routes builds the API router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", h.Healthz)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Authenticate)
		r.Get("/currencies", h.ListCurrencies)
		r.Route("/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/defaults", h.EntryDefaults)
			r.Patch("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.ListTemplates)
			r.Post("/", h.CreateTemplate)
			r.Delete("/{id}", h.DeleteTemplate)
			r.Post("/{id}/apply", h.ApplyTemplate)
		})
		r.Get("/reports", h.GetReport)
	})
	return r
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ListCurrencies returns the fixed currency metadata set.
func (h *Handler) ListCurrencies(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.Currencies)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("unable to write response stream", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	h.log.Warn("validation failed", zap.Error(err))
	h.writeJSON(w, http.StatusBadRequest, apperror.CustomValidationError(err))
}
