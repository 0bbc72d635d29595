package middleware

import (
	"log"
	"net/http"

	"github.com/nico/impostor-party-server/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// Admin guards the content-administration surface with the operator password
// from config. When no hash is configured the surface is disabled entirely.
func Admin(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.AdminPasswordHash == "" {
				http.Error(w, "Content administration is disabled", http.StatusForbidden)
				return
			}

			_, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="content"`)
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)); err != nil {
				log.Printf("ERROR [middleware.Admin] password mismatch from %s", r.RemoteAddr)
				http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
