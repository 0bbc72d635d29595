package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/nico/impostor-party-server/internal/service"
)

type contextKey string

const sessionKey contextKey = "session"

// Session validates the bearer token minted at create/join time and puts the
// caller's player identity on the request context.
func Session(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				log.Printf("ERROR [middleware.Session] missing authorization header")
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			sess, err := sessions.ValidateToken(token)
			if err != nil {
				log.Printf("ERROR [middleware.Session] token validation failed: %v", err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the caller identity attached by Session.
func GetSession(ctx context.Context) (*service.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*service.Session)
	return sess, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		// Websocket clients cannot set headers from browsers; allow ?token=.
		return r.URL.Query().Get("token")
	}
	return parts[1]
}
