package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// The guards fire before any store access, so a nil store is safe here.
func TestChannelHandlers_Unauthenticated(t *testing.T) {
	h := NewChannelHandler(nil, nil, nil, testLogger())

	tests := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		path    string
	}{
		{"create", h.Create, http.MethodPost, "/api/v1/channels"},
		{"list", h.List, http.MethodGet, "/api/v1/channels"},
		{"sync", h.Sync, http.MethodPost, "/api/v1/channels/sync"},
		{"attempts", h.Attempts, http.MethodGet, "/api/v1/channels/ch-1/attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			tt.handler(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401 without a profile, got %d", rec.Code)
			}
		})
	}
}
