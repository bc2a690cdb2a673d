// Local test harness standing in for external channel endpoints
// (aggregators/OTAs). Verifies the X-Channel-Signature header when
// CHANNEL_SECRET is set.
//
// Build: go build -o mock-channels ./mock-channels
// Run:   CHANNEL_SECRET=chsk_... ./mock-channels
package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

var requestCount atomic.Int64

func main() {
	port := "9090"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}
	secret := os.Getenv("CHANNEL_SECRET")

	// Healthy channel — always returns 200
	http.HandleFunc("/channel/ok", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		body, _ := io.ReadAll(r.Body)
		logRequest(r, count, 200, verify(body, r.Header.Get("X-Channel-Signature"), secret))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "synced"})
	})

	// Slow channel — delays 3 seconds before responding
	http.HandleFunc("/channel/slow", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		time.Sleep(3 * time.Second)
		logRequest(r, count, 200, "-")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "synced (slow)"})
	})

	// Broken channel — always returns 500, useful for circuit breaker demos
	http.HandleFunc("/channel/fail", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, 500, "-")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
	})

	// Stats endpoint — shows request count
	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"total_requests": requestCount.Load()})
	})

	log.Printf("Mock channel server starting on :%s", port)
	log.Printf("  POST /channel/ok    -> 200 OK")
	log.Printf("  POST /channel/slow  -> 200 OK (3s delay)")
	log.Printf("  POST /channel/fail  -> 500 Error")
	log.Printf("  GET  /stats         -> request count")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func verify(body []byte, header, secret string) string {
	if secret == "" {
		return "unchecked"
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if hmac.Equal([]byte(header), []byte(want)) {
		return "valid"
	}
	return "INVALID"
}

func logRequest(r *http.Request, count int64, status int, sigCheck string) {
	fmt.Printf("[#%d] %s %s -> %d | sig=%s check=%s channel=%s attempt=%s\n",
		count,
		r.Method,
		r.URL.Path,
		status,
		truncate(r.Header.Get("X-Channel-Signature"), 16),
		sigCheck,
		r.Header.Get("X-Channel-Name"),
		r.Header.Get("X-Sync-Attempt"),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n]) + "..."
}
