// Copyright (C) 2017 ScyllaDB

package scyllaclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hailocab/go-hostpool"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/httpmw"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/retry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// magicHost is replaced with a host from the pool by HostPool middleware.
const magicHost = "scylla.magic.host"

// Client provides means to interact with Scylla nodes over Scylla REST API.
type Client struct {
	config Config
	logger log.Logger

	client *http.Client

	mu sync.Mutex
	// terminations counts force_terminate_repair calls per host.
	terminations map[string]uint64
}

// NewClient creates new scylla HTTP client.
func NewClient(config Config, logger log.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	// Copy hosts
	hosts := make([]string, len(config.Hosts))
	copy(hosts, config.Hosts)

	pool := hostpool.NewEpsilonGreedy(hosts, config.PoolDecayDuration, &hostpool.LinearEpsilonValueCalculator{})

	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}
	b := config.Backoff
	newBackoff := func() retry.Backoff {
		return retry.WithMaxRetries(retry.NewExponentialBackoff(b.WaitMin, 0, b.WaitMax, b.Multiplier, b.Jitter), b.MaxRetries)
	}

	transport := config.Transport
	transport = httpmw.Timeout(transport, config.Timeout)
	transport = httpmw.Logger(transport, logger)
	transport = httpmw.HostPool(transport, pool, config.Port)
	transport = httpmw.Retry(transport, newBackoff, logger)

	return &Client{
		config: config,
		logger: logger,
		client:       &http.Client{Transport: transport},
		terminations: make(map[string]uint64),
	}, nil
}

// Hosts returns the configured hosts.
func (c *Client) Hosts() []string {
	return c.config.Hosts
}

func (c *Client) newURL(path string, query url.Values) string {
	u := url.URL{
		Scheme:   c.config.Scheme,
		Host:     magicHost,
		Path:     path,
		RawQuery: query.Encode(),
	}
	return u.String()
}

// do sends request and decodes JSON response into out if it's not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.newURL(path, query), http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return makeHTTPError(method, path, resp)
	}
	if out == nil {
		_, err = io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s %s: decode response", method, path)
	}
	return nil
}

// HTTPError is returned when Scylla responds with an error status.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s: scylla [HTTP %d] %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func makeHTTPError(method, path string, resp *http.Response) error {
	err := &HTTPError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) // nolint: errcheck
	var er errorResponse
	if json.Unmarshal(b, &er) == nil && er.Message != "" {
		err.Message = er.Message
	} else {
		err.Message = string(b)
	}
	return err
}

// StatusCodeOf returns HTTP status code carried by the error or it's cause.
// If not status can be found it returns 0.
func StatusCodeOf(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// longPollingTimeout is the timeout of a long polling request, wait starts
// only when node receives the request.
func (c *Client) longPollingTimeout(wait time.Duration) time.Duration {
	return wait + c.config.Timeout
}
