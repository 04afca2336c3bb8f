package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientPost(t *testing.T) {
	var got struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	if err := c.Post(context.Background(), "lottery.drawn", map[string]string{"eventId": "abc"}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Event != "lottery.drawn" || got.Data["eventId"] != "abc" {
		t.Errorf("unexpected body %+v", got)
	}
}

func TestClientPostErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	if err := c.Post(context.Background(), "lottery.drawn", nil); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
