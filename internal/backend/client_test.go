package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/model"
)

func TestListEntries(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/time_entries", r.URL.Path)
		require.Equal(t, "anon-key", r.Header.Get("apikey"))
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode([]model.TimeEntry{
			{ID: "e1", UserID: "u1", Date: "2026-03-02", StartTime: "09:00", EndTime: "17:00"},
		})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, "anon-key").WithToken("tok-123")
	entries, err := c.ListEntries(context.Background(), "u1", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	assert.Equal(t, []string{"eq.u1"}, gotQuery["user_id"])
	assert.ElementsMatch(t, []string{"gte.2026-03-01", "lte.2026-03-31"}, gotQuery["date"])
}

func TestContextTokenOverridesClientToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer request-tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]model.TimeEntry{})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, "anon-key").WithToken("client-tok")
	ctx := backend.ContextWithToken(context.Background(), "request-tok")
	_, err := c.ListEntries(ctx, "u1", "", "")
	require.NoError(t, err)
}

func TestCreateEntryReturnsStoredRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var in model.TimeEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ID = "assigned-1"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode([]model.TimeEntry{in})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, "anon-key")
	created, err := c.CreateEntry(context.Background(), model.TimeEntry{
		UserID: "u1", Date: "2026-03-02", StartTime: "09:00", Currency: "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "assigned-1", created.ID)
	assert.Equal(t, "2026-03-02", created.Date)
}

func TestRecentEntryNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]model.TimeEntry{})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, "anon-key")
	_, err := c.RecentEntry(context.Background(), "u1")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer srv.Close()

	c := backend.New(srv.URL, "anon-key").WithToken("stale")
	_, err := c.ListEntries(context.Background(), "u1", "", "")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/user", r.URL.Path)
		_ = json.NewEncoder(w).Encode(backend.User{ID: "u1", Email: "me@example.com"})
	}))
	defer srv.Close()

	c := backend.New(srv.URL, "anon-key").WithToken("tok")
	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "me@example.com", u.Email)
}

var oauthToken = oauth2.Token{
	AccessToken:  "access-1",
	TokenType:    "bearer",
	RefreshToken: "refresh-1",
	Expiry:       time.Now().Add(time.Hour).Round(time.Second),
}

func TestSaveAndLoadToken(t *testing.T) {
	dir := t.TempDir()

	tok, err := backend.LoadToken(dir)
	require.NoError(t, err)
	assert.Nil(t, tok, "no token stored yet")

	require.NoError(t, backend.SaveToken(dir, &oauthToken))
	loaded, err := backend.LoadToken(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, oauthToken.AccessToken, loaded.AccessToken)
	assert.Equal(t, oauthToken.RefreshToken, loaded.RefreshToken)
}
