// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey struct{}

var userIDKey contextKey

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	UserID(token string) (string, error)
}

// WithIdentity reads "Authorization: Bearer <token>" and stores the user id in
// the request context. Requests without the header pass through anonymous.
// A header that is present but unusable is rejected with 401.
func WithIdentity(v TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Authorization header must be a bearer token")
			return
		}

		userID, err := v.UserID(strings.TrimSpace(token))
		if err != nil {
			slog.Debug("rejected bearer token", "error", err, "remote", GetClientIP(r))
			ErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user id, if any
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
