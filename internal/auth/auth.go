package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rasoihq/rasoi-backend/internal/domain"
)

type ctxKey int

const profileCtxKey ctxKey = 0

// ProfileResolver maps a bearer token to the owning user's profile.
type ProfileResolver interface {
	GetProfileByToken(ctx context.Context, token string) (*domain.Profile, error)
}

// Middleware enforces bearer-token authentication. The resolved profile
// carries the tenant scope (restaurant_id) that handlers check against
// any client-supplied restaurant ID.
func Middleware(resolver ProfileResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			profile, err := resolver.GetProfileByToken(r.Context(), token)
			if err != nil {
				// A store failure is not an authentication verdict.
				logger.Error("token lookup failed", "error", err)
				serverError(w)
				return
			}
			if profile == nil {
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}

// WithProfile attaches a profile to the context.
func WithProfile(ctx context.Context, p *domain.Profile) context.Context {
	return context.WithValue(ctx, profileCtxKey, p)
}

// ProfileFrom returns the authenticated profile stored by Middleware.
func ProfileFrom(ctx context.Context) *domain.Profile {
	p, _ := ctx.Value(profileCtxKey).(*domain.Profile)
	return p
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func serverError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}
