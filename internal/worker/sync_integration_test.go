package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rasoihq/rasoi-backend/internal/engine"
	"github.com/rasoihq/rasoi-backend/internal/store"
	"github.com/rasoihq/rasoi-backend/internal/whatsapp"
	"github.com/redis/go-redis/v9"
)

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []store.SyncAttemptRecord
}

func (f *fakeRecorder) RecordSyncAttempt(ctx context.Context, rec store.SyncAttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, rec)
	return nil
}

func (f *fakeRecorder) recorded() []store.SyncAttemptRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.SyncAttemptRecord, len(f.attempts))
	copy(out, f.attempts)
	return out
}

// setupSyncTest creates a syncer with miniredis (no Postgres — sync
// attempts land in a fake recorder).
func setupSyncTest(t *testing.T) (*Syncer, *fakeRecorder, *engine.CircuitBreaker) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cb := engine.NewCircuitBreaker(client, logger)
	recorder := &fakeRecorder{}
	syncer := NewSyncer(recorder, cb, nil, logger)

	return syncer, recorder, cb
}

func testJob(endpointURL string) engine.SyncJob {
	return engine.SyncJob{
		ChannelID:    "ch-test-1",
		RestaurantID: "r1",
		ChannelName:  "zomato",
		EndpointURL:  endpointURL,
		SecretKey:    "test-secret",
		Snapshot:     json.RawMessage(`{"restaurant_id":"r1","entities":[]}`),
		Attempt:      1,
	}
}

func TestSync_SuccessfulEndpoint(t *testing.T) {
	var receivedCount atomic.Int32
	var receivedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedCount.Add(1)
		receivedHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	syncer, recorder, _ := setupSyncTest(t)

	syncer.Push(context.Background(), testJob(server.URL))

	if receivedCount.Load() != 1 {
		t.Errorf("expected 1 request to endpoint, got %d", receivedCount.Load())
	}

	if receivedHeaders.Get("X-Channel-Name") != "zomato" {
		t.Errorf("X-Channel-Name = %q, want %q", receivedHeaders.Get("X-Channel-Name"), "zomato")
	}
	if receivedHeaders.Get("X-Sync-Attempt") != "1" {
		t.Errorf("X-Sync-Attempt = %q, want %q", receivedHeaders.Get("X-Sync-Attempt"), "1")
	}
	if receivedHeaders.Get("X-Channel-Signature") == "" {
		t.Error("X-Channel-Signature should be set")
	}
	if receivedHeaders.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q, want %q", receivedHeaders.Get("Content-Type"), "application/json")
	}

	attempts := recorder.recorded()
	if len(attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(attempts))
	}
	if attempts[0].Status != "success" {
		t.Errorf("attempt status = %q, want success", attempts[0].Status)
	}
	if attempts[0].HTTPStatusCode == nil || *attempts[0].HTTPStatusCode != http.StatusOK {
		t.Errorf("attempt status code = %v, want 200", attempts[0].HTTPStatusCode)
	}
}

func TestSync_SignatureIsValid(t *testing.T) {
	var receivedSig string
	var receivedBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedSig = r.Header.Get("X-Channel-Signature")
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		receivedBody = buf[:n]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	syncer, _, _ := setupSyncTest(t)

	job := testJob(server.URL)
	job.SecretKey = "my-channel-secret"
	syncer.Push(context.Background(), job)

	// The receiving side recomputes the same HMAC over the body
	expectedSig := whatsapp.Sign(receivedBody, "my-channel-secret")
	if receivedSig != expectedSig {
		t.Errorf("signature mismatch:\n  received: %s\n  expected: %s", receivedSig, expectedSig)
	}
}

func TestSync_FailureRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream outage", http.StatusBadGateway)
	}))
	defer server.Close()

	syncer, recorder, cb := setupSyncTest(t)
	ctx := context.Background()

	syncer.Push(ctx, testJob(server.URL))

	attempts := recorder.recorded()
	if len(attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(attempts))
	}
	if attempts[0].Status != "failed" {
		t.Errorf("attempt status = %q, want failed", attempts[0].Status)
	}

	state := cb.GetState(ctx, "ch-test-1")
	if state.Failures != 1 {
		t.Errorf("expected 1 circuit breaker failure, got %d", state.Failures)
	}
}

func TestSync_CircuitBreakerBlocks(t *testing.T) {
	var requestCount atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	syncer, recorder, cb := setupSyncTest(t)
	ctx := context.Background()

	// Open the circuit breaker for this channel
	for i := 0; i < 5; i++ {
		cb.RecordFailure(ctx, "ch-test-1")
	}

	syncer.Push(ctx, testJob(server.URL))

	// The endpoint should NOT have been called
	if requestCount.Load() != 0 {
		t.Errorf("circuit breaker should block the push, but %d requests reached the endpoint", requestCount.Load())
	}

	attempts := recorder.recorded()
	if len(attempts) != 1 || attempts[0].ErrorMessage != "circuit breaker open" {
		t.Errorf("skipped push should be recorded with the circuit breaker reason, got %+v", attempts)
	}
}

func TestSync_UnreachableEndpoint(t *testing.T) {
	syncer, recorder, _ := setupSyncTest(t)

	// A port nothing listens on
	syncer.Push(context.Background(), testJob("http://127.0.0.1:1/sync"))

	attempts := recorder.recorded()
	if len(attempts) != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", len(attempts))
	}
	if attempts[0].Status != "failed" || attempts[0].ErrorMessage == "" {
		t.Errorf("unreachable endpoint should record a failure with an error message, got %+v", attempts[0])
	}
}

func TestWorkerPool_ProcessesJobs(t *testing.T) {
	var processed atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processed.Add(1)
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	syncer, _, _ := setupSyncTest(t)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(3, syncer, logger)
	pool.Start(ctx)

	for i := 0; i < 5; i++ {
		pool.Submit(testJob(server.URL))
	}

	// Wait for processing
	time.Sleep(500 * time.Millisecond)

	cancel()
	pool.Stop()

	if processed.Load() != 5 {
		t.Errorf("expected 5 jobs processed, got %d", processed.Load())
	}
}
