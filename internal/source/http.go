package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/hoursheet/internal/apperr"
)

const defaultMaxBytes = 32 << 20

// HTTP fetches a location with GET. Transport failures and 5xx responses
// are retried up to Retries times; any other non-2xx status fails at once.
type HTTP struct {
	client   *http.Client
	retries  int
	backoff  time.Duration
	maxBytes int64
	logger   *slog.Logger
}

// NewHTTP creates an HTTP fetcher using client.
func NewHTTP(client *http.Client, opts Options) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &HTTP{
		client:   client,
		retries:  max(opts.Retries, 0),
		backoff:  opts.RetryBackoff,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch performs the GET, retrying retryable failures.
func (h *HTTP) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			h.logger.Warn("source: retrying fetch",
				slog.String("url", url),
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()))
			if err := sleep(ctx, h.backoff*time.Duration(attempt)); err != nil {
				return nil, &apperr.NetworkError{URL: url, Err: err}
			}
		}

		body, retry, err := h.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}
	return nil, lastErr
}

func (h *HTTP) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, &apperr.NetworkError{URL: url, Err: err}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, &apperr.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, resp.StatusCode >= 500, &apperr.NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, true, &apperr.NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > h.maxBytes {
		return nil, false, &apperr.NetworkError{URL: url, Err: errors.New("response exceeds size limit")}
	}
	return body, false, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
