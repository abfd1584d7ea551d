package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/cache"
	"github.com/tallysheet/tally/internal/handler"
	"github.com/tallysheet/tally/internal/model"
)

type mockStore struct {
	entries   []model.TimeEntry
	created   []model.TimeEntry
	listErr   error
	createErr error
}

func (m *mockStore) Entries(_ context.Context, q cache.Query) ([]model.TimeEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.TimeEntry
	for _, e := range m.entries {
		if e.UserID != q.UserID {
			continue
		}
		if q.From != "" && e.Date < q.From {
			continue
		}
		if q.To != "" && e.Date > q.To {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockStore) CreateEntry(_ context.Context, e model.TimeEntry) (model.TimeEntry, error) {
	if m.createErr != nil {
		return model.TimeEntry{}, m.createErr
	}
	e.ID = "new-1"
	m.created = append(m.created, e)
	return e, nil
}

func (m *mockStore) UpdateEntry(_ context.Context, id string, e model.TimeEntry) (model.TimeEntry, error) {
	for _, existing := range m.entries {
		if existing.ID == id {
			e.ID = id
			return e, nil
		}
	}
	return model.TimeEntry{}, backend.ErrNotFound
}

func (m *mockStore) DeleteEntry(_ context.Context, _, id string) error {
	for _, existing := range m.entries {
		if existing.ID == id {
			return nil
		}
	}
	return backend.ErrNotFound
}

type mockBackend struct {
	user      backend.User
	userErr   error
	recent    *model.TimeEntry
	templates []model.Template
}

func (m *mockBackend) CurrentUser(context.Context) (backend.User, error) {
	if m.userErr != nil {
		return backend.User{}, m.userErr
	}
	return m.user, nil
}

func (m *mockBackend) RecentEntry(context.Context, string) (model.TimeEntry, error) {
	if m.recent == nil {
		return model.TimeEntry{}, backend.ErrNotFound
	}
	return *m.recent, nil
}

func (m *mockBackend) ListTemplates(context.Context, string) ([]model.Template, error) {
	return m.templates, nil
}

func (m *mockBackend) GetTemplate(_ context.Context, _, id string) (model.Template, error) {
	for _, t := range m.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Template{}, backend.ErrNotFound
}

func (m *mockBackend) CreateTemplate(_ context.Context, t model.Template) (model.Template, error) {
	t.ID = "tmpl-new"
	return t, nil
}

func (m *mockBackend) DeleteTemplate(context.Context, string) error { return nil }

func newHandler(store *mockStore, b *mockBackend) *handler.Handler {
	core, _ := observer.New(zapcore.InfoLevel)
	return handler.New(zap.New(core), store, b, handler.NewValidator())
}

func doRequest(h *handler.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejected(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{userErr: backend.ErrUnauthorized})
	rec := doRequest(h, http.MethodGet, "/api/v1/entries", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthzNeedsNoAuth(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestListEntriesComputesPay(t *testing.T) {
	store := &mockStore{entries: []model.TimeEntry{
		{ID: "e1", UserID: "u1", Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00",
			BreakTime: 30, HourlyRate: 20, Currency: "USD"},
		{ID: "e2", UserID: "u1", Date: "2026-03-03", StartTime: "09:00",
			HourlyRate: 20, Currency: "USD"},
	}}
	h := newHandler(store, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodGet, "/api/v1/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []handler.EntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)

	assert.False(t, out[0].InProgress)
	require.NotNil(t, out[0].Hours)
	assert.InDelta(t, 7.5, *out[0].Hours, 1e-9)
	require.NotNil(t, out[0].Pay)
	assert.InDelta(t, 150, *out[0].Pay, 1e-9)

	assert.True(t, out[1].InProgress)
	assert.Nil(t, out[1].Hours)
	assert.Nil(t, out[1].Pay)
}

func TestCreateEntryValidation(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})

	tests := []struct {
		name       string
		body       string
		expectCode int
		expectBody string
	}{
		{
			name: "valid",
			body: `{"date":"2026-03-02","start_time":"09:00","end_time":"17:00",
				"break_time":30,"hourly_rate":20,"currency":"USD"}`,
			expectCode: http.StatusCreated,
		},
		{
			name:       "valid in progress",
			body:       `{"date":"2026-03-02","start_time":"09:00","hourly_rate":20,"currency":"USD"}`,
			expectCode: http.StatusCreated,
		},
		{
			name:       "malformed json",
			body:       `{`,
			expectCode: http.StatusBadRequest,
			expectBody: "invalid request payload",
		},
		{
			name:       "bad start time",
			body:       `{"date":"2026-03-02","start_time":"9am","hourly_rate":20,"currency":"USD"}`,
			expectCode: http.StatusBadRequest,
			expectBody: "must be a time in 24-hour HH:MM format",
		},
		{
			name:       "bad date",
			body:       `{"date":"03/02/2026","start_time":"09:00","hourly_rate":20,"currency":"USD"}`,
			expectCode: http.StatusBadRequest,
			expectBody: "must be a date in YYYY-MM-DD format",
		},
		{
			name:       "unsupported currency",
			body:       `{"date":"2026-03-02","start_time":"09:00","hourly_rate":20,"currency":"BTC"}`,
			expectCode: http.StatusBadRequest,
			expectBody: "must be one of the supported currency codes",
		},
		{
			name:       "negative break",
			body:       `{"date":"2026-03-02","start_time":"09:00","break_time":-5,"hourly_rate":20,"currency":"USD"}`,
			expectCode: http.StatusBadRequest,
			expectBody: "must be zero or a positive number",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/api/v1/entries", tt.body)
			assert.Equal(t, tt.expectCode, rec.Code)
			if tt.expectBody != "" {
				assert.Contains(t, rec.Body.String(), tt.expectBody)
			}
		})
	}
}

func TestUpdateEntryNotFound(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})
	body := `{"date":"2026-03-02","start_time":"09:00","hourly_rate":20,"currency":"USD"}`
	rec := doRequest(h, http.MethodPatch, "/api/v1/entries/missing", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEntry(t *testing.T) {
	store := &mockStore{entries: []model.TimeEntry{{ID: "e1", UserID: "u1"}}}
	h := newHandler(store, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodDelete, "/api/v1/entries/e1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(h, http.MethodDelete, "/api/v1/entries/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntryDefaults(t *testing.T) {
	recent := model.TimeEntry{HourlyRate: 35, Currency: "EUR", BreakTime: 45}
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}, recent: &recent})

	rec := doRequest(h, http.MethodGet, "/api/v1/entries/defaults", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out handler.EntryDefaults
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, handler.EntryDefaults{HourlyRate: 35, Currency: "EUR", BreakTime: 45}, out)
}

func TestEntryDefaultsFirstTimeUser(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodGet, "/api/v1/entries/defaults", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out handler.EntryDefaults
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, handler.EntryDefaults{Currency: "USD"}, out)
}

func TestGetReport(t *testing.T) {
	store := &mockStore{entries: []model.TimeEntry{
		{ID: "e1", UserID: "u1", Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00",
			BreakTime: 30, HourlyRate: 20, Currency: "USD"},
		{ID: "e2", UserID: "u1", Date: "2026-03-03", StartTime: "10:00", EndTime: "13:00",
			HourlyRate: 20, Currency: "USD"},
	}}
	h := newHandler(store, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodGet, "/api/v1/reports?from=2026-03-01&to=2026-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.TimesheetReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, 10.5, rep.TotalHours)
	assert.Equal(t, 210.0, rep.TotalEarnings)
	assert.Equal(t, 20.0, rep.AverageHourlyRate)
	assert.Equal(t, "USD", rep.Currency)
	assert.Len(t, rep.Days, 2)
}

func TestGetReportText(t *testing.T) {
	store := &mockStore{entries: []model.TimeEntry{
		{ID: "e1", UserID: "u1", Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00",
			BreakTime: 30, HourlyRate: 20, Currency: "USD"},
	}}
	h := newHandler(store, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodGet, "/api/v1/reports?from=2026-03-01&to=2026-03-31&format=text", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Mar 2, 2026 - Work from 09:00 to 17:00 - $150.00\n"))
	assert.Contains(t, rec.Body.String(), "Total Pay: $150.00")
}

func TestGetReportNoContent(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})
	rec := doRequest(h, http.MethodGet, "/api/v1/reports?from=2026-03-01&to=2026-03-31", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetReportMissingRange(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})
	rec := doRequest(h, http.MethodGet, "/api/v1/reports", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReportMixedCurrencies(t *testing.T) {
	store := &mockStore{entries: []model.TimeEntry{
		{ID: "e1", UserID: "u1", Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00",
			HourlyRate: 20, Currency: "USD"},
		{ID: "e2", UserID: "u1", Date: "2026-03-03", StartTime: "09:00", EndTime: "17:00",
			HourlyRate: 20, Currency: "EUR"},
	}}
	h := newHandler(store, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodGet, "/api/v1/reports?from=2026-03-01&to=2026-03-31", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The literal plurality behaviour stays available on request.
	rec = doRequest(h, http.MethodGet, "/api/v1/reports?from=2026-03-01&to=2026-03-31&allow_mixed=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var rep model.TimesheetReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "USD", rep.Currency)
	assert.Equal(t, 320.0, rep.TotalEarnings)
}

func TestTemplates(t *testing.T) {
	b := &mockBackend{
		user: backend.User{ID: "u1"},
		templates: []model.Template{{
			ID: "tmpl-1", UserID: "u1", Name: "Office day",
			StartTime: "09:00", EndTime: "17:00", BreakTime: 30, HourlyRate: 20, Currency: "USD",
		}},
	}
	store := &mockStore{}
	h := newHandler(store, b)

	rec := doRequest(h, http.MethodGet, "/api/v1/templates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var templates []model.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &templates))
	require.Len(t, templates, 1)
	assert.Equal(t, "Office day", templates[0].Name)

	rec = doRequest(h, http.MethodPost, "/api/v1/templates/tmpl-1/apply?date=2026-03-05", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.created, 1)
	assert.Equal(t, "2026-03-05", store.created[0].Date)
	assert.Equal(t, "09:00", store.created[0].StartTime)
	assert.Equal(t, "u1", store.created[0].UserID)

	rec = doRequest(h, http.MethodPost, "/api/v1/templates/missing/apply", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateTemplateValidation(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})

	rec := doRequest(h, http.MethodPost, "/api/v1/templates",
		`{"name":"","currency":"USD"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h, http.MethodPost, "/api/v1/templates",
		`{"name":"Office day","start_time":"09:00","end_time":"17:00","break_time":30,"hourly_rate":20,"currency":"USD"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListCurrencies(t *testing.T) {
	h := newHandler(&mockStore{}, &mockBackend{user: backend.User{ID: "u1"}})
	rec := doRequest(h, http.MethodGet, "/api/v1/currencies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var currencies []model.Currency
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &currencies))
	assert.Len(t, currencies, 7)
	assert.Equal(t, "USD", currencies[0].Code)
}

func TestBackendOutage(t *testing.T) {
	store := &mockStore{listErr: errors.New("connection refused")}
	h := newHandler(store, &mockBackend{user: backend.User{ID: "u1"}})
	rec := doRequest(h, http.MethodGet, "/api/v1/entries", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
