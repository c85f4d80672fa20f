// Copyright (C) 2017 ScyllaDB

package httpmw

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/retry"
	"go.uber.org/atomic"
)

func noWaitBackoff(n uint64) func() retry.Backoff {
	return func() retry.Backoff {
		return retry.WithMaxRetries(retry.BackoffFunc(func() time.Duration { return 0 }), n)
	}
}

func TestRetry(t *testing.T) {
	calls := atomic.NewInt32(0)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Inc() < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer s.Close()

	client := http.Client{
		Transport: Retry(http.DefaultTransport, noWaitBackoff(5), log.NewDevelopment()),
	}

	t.Run("GET is retried", func(t *testing.T) {
		resp, err := client.Get(s.URL)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("StatusCode=%d", resp.StatusCode)
		}
		if calls.Load() != 3 {
			t.Fatalf("calls=%d, expected 3", calls.Load())
		}
	})

	t.Run("POST is not retried", func(t *testing.T) {
		calls.Store(0)
		resp, err := client.Post(s.URL, "text/plain", strings.NewReader(""))
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("StatusCode=%d", resp.StatusCode)
		}
		if calls.Load() != 1 {
			t.Fatalf("calls=%d, expected 1", calls.Load())
		}
	})
}

func TestTimeout(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer s.Close()

	client := http.Client{
		Transport: Timeout(http.DefaultTransport, 10*time.Millisecond),
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, s.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Do(req); err == nil || !strings.Contains(err.Error(), "timeout after") {
		t.Fatalf("Do() error %v, expected timeout", err)
	}
}

func TestTimeoutDisabled(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer s.Close()

	client := http.Client{
		Transport: Timeout(http.DefaultTransport, 10*time.Millisecond),
	}

	req, err := http.NewRequestWithContext(NoTimeout(context.Background()), http.MethodGet, s.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
}

func TestRetryDisabled(t *testing.T) {
	calls := atomic.NewInt32(0)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Inc()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer s.Close()

	client := http.Client{
		Transport: Retry(http.DefaultTransport, noWaitBackoff(5), log.NewDevelopment()),
	}

	req, err := http.NewRequestWithContext(NoRetry(context.Background()), http.MethodGet, s.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if calls.Load() != 1 {
		t.Fatalf("calls=%d, expected 1", calls.Load())
	}
}
