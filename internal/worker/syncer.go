package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rasoihq/rasoi-backend/internal/engine"
	"github.com/rasoihq/rasoi-backend/internal/metrics"
	"github.com/rasoihq/rasoi-backend/internal/store"
	"github.com/rasoihq/rasoi-backend/internal/websocket"
	"github.com/rasoihq/rasoi-backend/internal/whatsapp"
)

// AttemptRecorder persists sync attempt outcomes.
type AttemptRecorder interface {
	RecordSyncAttempt(ctx context.Context, rec store.SyncAttemptRecord) error
}

// Syncer pushes availability snapshots to channel endpoints over HTTP,
// signing each payload with the channel's secret so the receiving side
// can verify origin the same way we verify the messaging platform's
// webhooks.
type Syncer struct {
	httpClient *http.Client
	recorder   AttemptRecorder
	cb         *engine.CircuitBreaker
	hub        *websocket.Hub
	logger     *slog.Logger
}

// NewSyncer creates a syncer with a configured HTTP client.
func NewSyncer(recorder AttemptRecorder, cb *engine.CircuitBreaker, hub *websocket.Hub, logger *slog.Logger) *Syncer {
	return &Syncer{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		recorder: recorder,
		cb:       cb,
		hub:      hub,
		logger:   logger,
	}
}

// Push delivers one snapshot to one channel endpoint.
func (s *Syncer) Push(ctx context.Context, job engine.SyncJob) {
	start := time.Now()

	if s.cb != nil {
		if state, ok := s.cb.AllowRequest(ctx, job.ChannelID); !ok {
			s.logger.Warn("skipping sync, circuit open",
				"channel_id", job.ChannelID,
				"state", state,
			)
			metrics.SyncDeliveries.WithLabelValues("skipped").Inc()
			s.recordAttempt(ctx, job, start, nil, "", "circuit breaker open")
			return
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.EndpointURL, bytes.NewReader(job.Snapshot))
	if err != nil {
		s.recordResult(ctx, job, start, nil, "", fmt.Sprintf("failed to create request: %v", err))
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Channel-Signature", whatsapp.Sign(job.Snapshot, job.SecretKey))
	req.Header.Set("X-Channel-Name", job.ChannelName)
	req.Header.Set("X-Sync-Attempt", fmt.Sprintf("%d", job.Attempt))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.recordResult(ctx, job, start, nil, "", fmt.Sprintf("request failed: %v", err))
		return
	}
	defer resp.Body.Close()

	// Limit response body capture to 1KB
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	s.recordResult(ctx, job, start, &resp.StatusCode, string(body), "")
}

// recordResult updates the circuit breaker, metrics, ops feed, and the
// database with one attempt's outcome.
func (s *Syncer) recordResult(ctx context.Context, job engine.SyncJob, start time.Time, statusCode *int, responseBody, errMsg string) {
	failed := errMsg != "" || (statusCode != nil && *statusCode >= 400)

	if s.cb != nil {
		if failed {
			s.cb.RecordFailure(ctx, job.ChannelID)
		} else {
			s.cb.RecordSuccess(ctx, job.ChannelID)
		}
	}

	result := "success"
	if failed {
		result = "failed"
	}
	metrics.SyncDeliveries.WithLabelValues(result).Inc()

	if s.hub != nil {
		s.hub.Broadcast(websocket.FeedEvent{
			Type:         websocket.EventSyncResult,
			RestaurantID: job.RestaurantID,
			ChannelID:    job.ChannelID,
			Result:       result,
		})
	}

	s.recordAttempt(ctx, job, start, statusCode, responseBody, errMsg)
}

// recordAttempt logs the sync result to PostgreSQL.
func (s *Syncer) recordAttempt(ctx context.Context, job engine.SyncJob, start time.Time, statusCode *int, responseBody, errMsg string) {
	elapsed := time.Since(start).Milliseconds()

	status := "success"
	if errMsg != "" || (statusCode != nil && *statusCode >= 400) {
		status = "failed"
	}

	err := s.recorder.RecordSyncAttempt(ctx, store.SyncAttemptRecord{
		ChannelID:      job.ChannelID,
		RestaurantID:   job.RestaurantID,
		Status:         status,
		HTTPStatusCode: statusCode,
		ResponseBody:   responseBody,
		ResponseTimeMs: int(elapsed),
		ErrorMessage:   errMsg,
	})
	if err != nil {
		s.logger.Error("failed to record sync attempt",
			"error", err,
			"channel_id", job.ChannelID,
		)
	}

	if status == "success" {
		s.logger.Info("channel sync delivered",
			"channel_id", job.ChannelID,
			"channel", job.ChannelName,
			"status_code", statusCode,
			"response_time_ms", elapsed,
		)
	} else {
		s.logger.Warn("channel sync failed",
			"channel_id", job.ChannelID,
			"channel", job.ChannelName,
			"error", errMsg,
			"status_code", statusCode,
			"response_time_ms", elapsed,
		)
	}
}
