// Copyright (C) 2017 ScyllaDB

package httpmw

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// cancelOnClose releases request context when response body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// Timeout bounds every request with timeout, the bound covers reading of
// the response body. Requests with context marked with NoTimeout are passed
// as is.
func Timeout(next http.RoundTripper, timeout time.Duration) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if isNoTimeout(req.Context()) {
			return next.RoundTrip(req)
		}

		cause := errors.Errorf("timeout after %s", timeout)
		ctx, cancel := context.WithTimeoutCause(req.Context(), timeout, cause)

		resp, err := next.RoundTrip(req.WithContext(ctx))
		if err != nil {
			cancel()
			if context.Cause(ctx) == cause {
				return nil, cause
			}
			return nil, err
		}
		resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	})
}
