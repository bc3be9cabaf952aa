// Package middleware provides the HTTP middleware for the store directory
// API server: the bearer-token gate, CORS, request logging, and body size
// limiting.
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// storesPathPrefix is the collection the auth gate protects.
const storesPathPrefix = "/stores"

// NewAuthGate returns a middleware enforcing a static bearer secret on
// mutating requests (POST/PATCH/DELETE) under the store collection.
// Reads and paths outside the collection pass through unchecked.
//
// A missing Authorization header answers 401; a header that is not exactly
// "Bearer " + secret answers 403. The comparison is constant-time.
func NewAuthGate(secret string) func(http.Handler) http.Handler {
	expected := []byte("Bearer " + secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !requiresAuth(r) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				slog.WarnContext(r.Context(), "authorization header missing",
					"path", r.URL.Path, "method", r.Method)
				writeAuthError(w, http.StatusUnauthorized, "Authorizationヘッダーが存在しません")
				return
			}
			if subtle.ConstantTimeCompare([]byte(header), expected) != 1 {
				slog.WarnContext(r.Context(), "authorization header invalid",
					"path", r.URL.Path, "method", r.Method)
				writeAuthError(w, http.StatusForbidden, "Authorizationヘッダーの値が無効です")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// requiresAuth reports whether the request targets the store collection
// with a mutating method.
func requiresAuth(r *http.Request) bool {
	if !strings.HasPrefix(r.URL.Path, storesPathPrefix) {
		return false
	}
	switch r.Method {
	case http.MethodPost, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// writeAuthError writes the rejection in the API's {"detail": ...} shape.
func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
