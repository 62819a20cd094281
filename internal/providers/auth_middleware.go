package providers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"studiosync/internal/structures"
)

// RequireBearer gates privileged routes behind the configured admin token.
// With no token configured every privileged request is refused, so a blank
// config can never leave the write surface open.
func RequireBearer(conf *structures.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if conf.Auth.AdminToken == "" {
			http.Error(w, "Admin credential not configured", http.StatusServiceUnavailable)
			return
		}

		token, ok := bearerToken(r)
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(conf.Auth.AdminToken)) != 1 {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}
