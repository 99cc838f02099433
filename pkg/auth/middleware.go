package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware returns HTTP middleware that validates a bearer token and
// attaches its claims to the request context.
//
// When required is false, requests without an Authorization header pass
// through anonymously; a header carrying an invalid token is still rejected.
func Middleware(svc *JWTService, required bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if required {
					unauthorized(w, "missing authorization header")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenString == "" {
				unauthorized(w, "malformed authorization header")
				return
			}

			claims, err := svc.ValidateToken(tokenString)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected bearer token", "error", err, "path", r.URL.Path)
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="flowsight"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
