package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/pkg/webhook"
	"golang.org/x/exp/slog"
)

// ResultsSink receives final draw results once they are committed
type ResultsSink interface {
	Publish(ctx context.Context, result *models.DrawResult) error
}

// LogSink writes each result as a structured log line
type LogSink struct{}

// Publish logs the result
func (LogSink) Publish(ctx context.Context, result *models.DrawResult) error {
	winners := make([]string, len(result.Winners))
	for i, w := range result.Winners {
		winners[i] = w.ParticipantID
	}
	slog.Info("Lottery draw finished",
		"eventId", result.EventID.Hex(),
		"targetId", result.TargetID,
		"status", result.Status,
		"eligible", result.EligibleCount,
		"winners", winners,
		"insufficientParticipation", result.InsufficientParticipation,
	)
	return nil
}

// WebhookSink posts results to an external endpoint
type WebhookSink struct {
	client *webhook.Client
}

// NewWebhookSink creates a sink posting through client
func NewWebhookSink(client *webhook.Client) *WebhookSink {
	return &WebhookSink{client: client}
}

// Publish posts the result under an event name derived from its status
func (s *WebhookSink) Publish(ctx context.Context, result *models.DrawResult) error {
	return s.client.Post(ctx, "lottery."+string(result.Status), result)
}

// MultiSink publishes to every sink and joins their errors
type MultiSink []ResultsSink

// Publish fans out to all sinks
func (m MultiSink) Publish(ctx context.Context, result *models.DrawResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsyncSink hands results to a background worker so draws never wait on
// slow consumers. Results are dropped with a warning when the queue is full
// or the sink has been closed.
type AsyncSink struct {
	next    ResultsSink
	timeout time.Duration
	queue   chan *models.DrawResult
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewAsyncSink starts a worker that forwards results to next
func NewAsyncSink(next ResultsSink, queueSize int, timeout time.Duration) *AsyncSink {
	if queueSize <= 0 {
		queueSize = 100
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s := &AsyncSink{
		next:    next,
		timeout: timeout,
		queue:   make(chan *models.DrawResult, queueSize),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *AsyncSink) run() {
	defer s.wg.Done()
	for result := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		if err := s.next.Publish(ctx, result); err != nil {
			slog.Error("Failed to publish draw result", "error", err, "eventId", result.EventID.Hex())
		}
		cancel()
	}
}

// Publish enqueues the result without blocking
func (s *AsyncSink) Publish(ctx context.Context, result *models.DrawResult) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		slog.Warn("Draw result sink closed, dropping result", "eventId", result.EventID.Hex(), "status", result.Status)
		return nil
	}
	select {
	case s.queue <- result:
	default:
		slog.Warn("Draw result queue full, dropping result", "eventId", result.EventID.Hex(), "status", result.Status)
	}
	return nil
}

// Close stops accepting results and waits for queued ones to be delivered
func (s *AsyncSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
