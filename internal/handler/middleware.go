package handler

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/backend"
)

type userCtxKey struct{}

// Authenticate extracts the request's bearer token, resolves the account at
// the auth service and stores it in the request context. Requests without a
// valid session get 401.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			h.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		ctx := backend.ContextWithToken(r.Context(), token)
		user, err := h.backend.CurrentUser(ctx)
		if err != nil {
			h.log.Warn("auth rejected", zap.Error(err))
			h.writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx = context.WithValue(ctx, userCtxKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the account the middleware resolved for this request.
func currentUser(r *http.Request) backend.User {
	u, _ := r.Context().Value(userCtxKey{}).(backend.User)
	return u
}
