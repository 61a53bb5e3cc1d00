package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestHTTPClientQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		w.Write([]byte(strings.Repeat("x", limit)))
	}))
	defer srv.Close()

	client, err := NewSharedClient(Config{URL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewSharedClient error: %v", err)
	}

	payload, err := client.Query(context.Background(), 250)
	if err != nil {
		t.Fatalf("Query error: %v", err)
	}
	if len(payload) != 250 {
		t.Errorf("payload length = %d, want 250", len(payload))
	}
}

func TestHTTPClientNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewFreshClient(Config{URL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewFreshClient error: %v", err)
	}

	if _, err := client.Query(context.Background(), 1); err == nil {
		t.Error("Query succeeded on 429 response, want error")
	}
}

// A stalled endpoint must surface as a per-call failure via the client
// timeout, not wedge the batch forever.
func TestHTTPClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	client, err := NewSharedClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewSharedClient error: %v", err)
	}

	start := time.Now()
	_, err = client.Query(context.Background(), 1)
	if err == nil {
		t.Fatal("Query on stalled endpoint succeeded, want timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %v, want ~50ms", elapsed)
	}
}

func TestClientConstructorsRequireURL(t *testing.T) {
	if _, err := NewSharedClient(Config{}); !errors.Is(err, ErrMissingEndpoint) {
		t.Errorf("NewSharedClient error = %v, want ErrMissingEndpoint", err)
	}
	if _, err := NewFreshClient(Config{}); !errors.Is(err, ErrMissingEndpoint) {
		t.Errorf("NewFreshClient error = %v, want ErrMissingEndpoint", err)
	}
}

// End-to-end against a real HTTP server: batched dispatch, measured
// latencies, report fields populated.
func TestRunnerAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		w.Write([]byte(strings.Repeat("y", limit)))
	}))
	defer srv.Close()

	cfg := Config{
		URL:         srv.URL,
		Pattern:     "small", // size 10
		TotalCalls:  40,
		Concurrency: 8,
		Mode:        ModeShared,
		Timeout:     5 * time.Second,
	}

	r, err := New(cfg, ModeShared)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	rep := r.Report()
	if rep.TotalCalls != 40 || rep.Success != 40 {
		t.Fatalf("report counts = (%d,%d), want (40,40)", rep.TotalCalls, rep.Success)
	}
	if rep.SuccessRate != 100.0 {
		t.Errorf("SuccessRate = %v, want 100.0", rep.SuccessRate)
	}
	if rep.QPS <= 0 {
		t.Errorf("QPS = %v, want > 0", rep.QPS)
	}
	// 40 calls x 10 bytes.
	if want := 400.0 / (1 << 20); rep.TotalMB != want {
		t.Errorf("TotalMB = %v, want %v", rep.TotalMB, want)
	}
}
