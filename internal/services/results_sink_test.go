package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type failingSink struct{}

func (failingSink) Publish(context.Context, *models.DrawResult) error { return errors.New("down") }

func TestMultiSinkJoinsErrors(t *testing.T) {
	rec := &recordingSink{}
	sink := MultiSink{rec, failingSink{}, LogSink{}}
	err := sink.Publish(context.Background(), &models.DrawResult{EventID: primitive.NewObjectID(), Status: models.DrawOutcomeSuccess})
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if rec.count() != 1 {
		t.Errorf("recording sink got %d results", rec.count())
	}
}

func TestAsyncSinkDeliversBeforeClose(t *testing.T) {
	rec := &recordingSink{}
	sink := NewAsyncSink(rec, 10, time.Second)
	for i := 0; i < 5; i++ {
		_ = sink.Publish(context.Background(), &models.DrawResult{EventID: primitive.NewObjectID()})
	}
	sink.Close()
	if rec.count() != 5 {
		t.Fatalf("delivered %d results, want 5", rec.count())
	}
}

func TestAsyncSinkPublishAfterClose(t *testing.T) {
	rec := &recordingSink{}
	sink := NewAsyncSink(rec, 1, time.Second)
	sink.Close()
	sink.Close()

	result := &models.DrawResult{EventID: primitive.NewObjectID(), Status: models.DrawOutcomeSuccess}
	if err := sink.Publish(context.Background(), result); err != nil {
		t.Fatalf("Publish after Close: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("closed sink delivered %d results", rec.count())
	}
}

func TestAsyncSinkConcurrentPublishAndClose(t *testing.T) {
	sink := NewAsyncSink(&recordingSink{}, 4, time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sink.Publish(context.Background(), &models.DrawResult{EventID: primitive.NewObjectID()})
		}()
	}
	sink.Close()
	wg.Wait()
}

func TestWebhookSinkPostsStatusEvent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewWebhookSink(webhook.NewClient(srv.URL, "", time.Second))
	if err := sink.Publish(context.Background(), &models.DrawResult{EventID: primitive.NewObjectID(), Status: models.DrawOutcomeSuccess}); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("webhook hit %d times", hits.Load())
	}
}
