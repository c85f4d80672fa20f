// Copyright (C) 2017 ScyllaDB

package httpmw

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/retry"
)

// Retry retries idempotent requests that failed with an error or a 5xx
// status. Each attempt goes through next, so with HostPool below a retried
// request may land on a different host.
// Requests with context marked with NoRetry are passed as is.
func Retry(next http.RoundTripper, newBackoff func() retry.Backoff, logger log.Logger) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		ctx := req.Context()
		if isNoRetry(ctx) || req.Method != http.MethodGet {
			return next.RoundTrip(req)
		}

		var resp *http.Response
		op := func() error {
			var err error
			resp, err = next.RoundTrip(req)
			if err != nil {
				if ctx.Err() != nil {
					return retry.Permanent(err)
				}
				return err
			}
			if resp.StatusCode >= 500 && resp.StatusCode != http.StatusNotImplemented {
				resp.Body.Close()
				return errors.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
			}
			return nil
		}
		notify := func(err error, wait time.Duration) {
			logger.Info(ctx, "HTTP retry backoff",
				"operation", req.Method+" "+req.URL.Path,
				"wait", wait,
				"error", err,
			)
		}

		if err := retry.WithNotify(ctx, op, newBackoff(), notify); err != nil {
			return nil, err
		}
		return resp, nil
	})
}
