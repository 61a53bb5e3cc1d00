package runner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrMissingEndpoint aborts a run before any calls are issued.
var ErrMissingEndpoint = errors.New("query endpoint URL not configured")

// Client issues one query against the remote endpoint. The payload is
// opaque to the core; only its byte length is measured.
type Client interface {
	Query(ctx context.Context, size int) ([]byte, error)
}

// ClientFactory constructs a connection handle. The shared strategy calls
// it once per run, the fresh strategy once per call.
type ClientFactory func() (Client, error)

type httpClient struct {
	url    string
	client *http.Client
}

// NewSharedClient builds the long-lived client for the shared strategy:
// pooled transport, keep-alives on.
func NewSharedClient(cfg Config) (Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingEndpoint
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxConnsPerHost = 2000
	t.MaxIdleConnsPerHost = 2000
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &httpClient{
		url: cfg.URL,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: t,
		},
	}, nil
}

// NewFreshClient builds a throwaway client for a single call. Keep-alives
// are off so every call pays full connection setup.
func NewFreshClient(cfg Config) (Client, error) {
	if cfg.URL == "" {
		return nil, ErrMissingEndpoint
	}

	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DisableKeepAlives = true
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}

	return &httpClient{
		url: cfg.URL,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: t,
		},
	}, nil
}

func (c *httpClient) Query(ctx context.Context, size int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?limit=%d", c.url, size), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("query returned status %d", resp.StatusCode)
	}
	return body, nil
}

// factoryFor selects the construction policy for a strategy.
func factoryFor(cfg Config, strategy string) (ClientFactory, error) {
	switch strategy {
	case ModeShared:
		return func() (Client, error) { return NewSharedClient(cfg) }, nil
	case ModeFresh:
		return func() (Client, error) { return NewFreshClient(cfg) }, nil
	default:
		return nil, fmt.Errorf("unknown connection mode %q", strategy)
	}
}
