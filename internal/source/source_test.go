package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/starford/hoursheet/internal/apperr"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	body, err := NewHTTP(srv.Client(), Options{Logger: quietLogger()}).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "a,b\n1,2\n" {
		t.Errorf("body = %q", body)
	}
}

func TestHTTPFetch_NonSuccessStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.Client(), Options{Retries: 3, Logger: quietLogger()}).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	var ne *apperr.NetworkError
	if !errors.As(err, &ne) || ne.StatusCode != http.StatusNotFound {
		t.Errorf("status not reported: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("4xx should not be retried, calls = %d", calls.Load())
	}
}

func TestHTTPFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	h := NewHTTP(srv.Client(), Options{Retries: 2, RetryBackoff: time.Millisecond, Logger: quietLogger()})
	body, err := h.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "ok" || calls.Load() != 3 {
		t.Errorf("body = %q, calls = %d", body, calls.Load())
	}
}

func TestHTTPFetch_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.Client(), Options{MaxBytes: 4, Logger: quietLogger()}).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, apperr.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestFileFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hours.csv")
	if err := os.WriteFile(path, []byte("x\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := NewFile(0)
	for _, loc := range []string{path, "file://" + path} {
		body, err := f.Fetch(context.Background(), loc)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", loc, err)
		}
		if string(body) != "x\n1\n" {
			t.Errorf("body = %q", body)
		}
	}

	if _, err := f.Fetch(context.Background(), filepath.Join(dir, "missing.csv")); !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("missing file err = %v, want ErrNetwork", err)
	}
	if _, err := f.Fetch(context.Background(), dir); !errors.Is(err, apperr.ErrNetwork) {
		t.Errorf("directory err = %v, want ErrNetwork", err)
	}
}

func TestNewSelectsFetcher(t *testing.T) {
	if _, ok := New("https://docs.google.com/x", Options{}).(*HTTP); !ok {
		t.Error("https location should use HTTP fetcher")
	}
	if _, ok := New("./data/hours.csv", Options{}).(*File); !ok {
		t.Error("path location should use File fetcher")
	}
}

func TestWatch_DebouncedChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "hours.csv")
	if err := os.WriteFile(path, []byte("a\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 50*time.Millisecond, quietLogger(), func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("a\n1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	_ = os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x"), 0o644)

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change callback")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned %v", err)
	}
	if n := len(changed); n != 0 {
		t.Errorf("burst produced %d extra callbacks", n)
	}
}
