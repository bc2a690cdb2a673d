package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rasoihq/rasoi-backend/internal/domain"
)

type fakeResolver struct {
	profiles map[string]*domain.Profile
	err      error
}

func (f *fakeResolver) GetProfileByToken(ctx context.Context, token string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profiles[token], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func runMiddleware(t *testing.T, resolver ProfileResolver, authHeader string) (*httptest.ResponseRecorder, *domain.Profile) {
	t.Helper()

	var seen *domain.Profile
	handler := Middleware(resolver, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ProfileFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seen
}

func TestMiddleware_ValidToken(t *testing.T) {
	resolver := &fakeResolver{profiles: map[string]*domain.Profile{
		"tok-1": {UserID: "u1", RestaurantID: "r1", Role: "manager"},
	}}

	rec, profile := runMiddleware(t, resolver, "Bearer tok-1")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if profile == nil || profile.RestaurantID != "r1" {
		t.Errorf("handler should see the resolved profile, got %+v", profile)
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	rec, _ := runMiddleware(t, &fakeResolver{}, "")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for missing Authorization header, got %d", rec.Code)
	}
}

func TestMiddleware_WrongScheme(t *testing.T) {
	rec, _ := runMiddleware(t, &fakeResolver{}, "Basic dXNlcjpwYXNz")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-bearer scheme, got %d", rec.Code)
	}
}

func TestMiddleware_UnknownToken(t *testing.T) {
	resolver := &fakeResolver{profiles: map[string]*domain.Profile{}}

	rec, profile := runMiddleware(t, resolver, "Bearer nope")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for unknown token, got %d", rec.Code)
	}
	if profile != nil {
		t.Error("handler must not run for unknown tokens")
	}
}

func TestMiddleware_ResolverError(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db down")}

	rec, profile := runMiddleware(t, resolver, "Bearer tok-1")

	// A store outage is an internal error, not an auth verdict
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when the resolver fails, got %d", rec.Code)
	}
	if profile != nil {
		t.Error("handler must not run when the resolver fails")
	}
}

func TestProfileFrom_EmptyContext(t *testing.T) {
	if p := ProfileFrom(context.Background()); p != nil {
		t.Errorf("expected nil profile on empty context, got %+v", p)
	}
}
