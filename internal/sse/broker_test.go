package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	defer goleak.VerifyNone(t)
	b := NewBroker(time.Second)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDatasetDelivery(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDataset("reloaded", map[string]int{"records": 3})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: dataset.reloaded") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"records":3`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestEventsAreNumbered(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDataset("loaded", nil)
	b.PublishDataset("reloaded", nil)

	for _, want := range []string{"id: 1\nevent: dataset.loaded\n", "id: 2\nevent: dataset.reloaded\n"} {
		select {
		case msg := <-ch:
			if !strings.HasPrefix(string(msg), want) {
				t.Errorf("frame = %q, want prefix %q", msg, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for frame")
		}
	}
}

func TestLatestEventReplayedToNewSubscriber(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	b.PublishDataset("loaded", map[string]string{"state": "ready"})
	b.PublishDataset("failed", map[string]string{"state": "ready"})

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: dataset.failed") {
			t.Errorf("replayed frame = %q, want the latest event", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no replay for new subscriber")
	}
	select {
	case msg := <-ch:
		t.Errorf("unexpected extra frame %q", msg)
	default:
	}
}

func TestKeepAlive(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	select {
	case msg := <-ch:
		if string(msg) != ": ping\n\n" {
			t.Errorf("msg = %q, want keep-alive", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no keep-alive received")
	}
}

// syncRecorder guards the body so the test can read it while the handler
// goroutine writes.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for b.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("handler did not subscribe")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.PublishDataset("loaded", map[string]string{"state": "ready"})
	deadline = time.Now().Add(time.Second)
	if !strings.HasPrefix(w.body(), "retry: 3000\n\n") {
		t.Errorf("stream does not start with a retry hint: %q", w.body())
	}
	for !strings.Contains(w.body(), "event: dataset.loaded") {
		if time.Now().After(deadline) {
			t.Fatalf("handler output missing event: %q", w.body())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done

	deadline = time.Now().Add(time.Second)
	for b.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client not cleaned up after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for i := 0; i < 100; i++ {
		b.PublishDataset("reloaded", map[string]int{"i": i})
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	b := NewBroker(time.Second)
	ch := b.Subscribe()

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.PublishDataset("reloaded", nil)
}
