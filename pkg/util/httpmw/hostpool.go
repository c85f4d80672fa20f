// Copyright (C) 2017 ScyllaDB

package httpmw

import (
	"net"
	"net/http"

	"github.com/hailocab/go-hostpool"
	"github.com/pkg/errors"
)

var errServerError = errors.New("server error")

// HostPool routes every request to a host picked from pool, a host set with
// ForceHost bypasses the pool. The pool is informed about the outcome so
// that failing nodes are picked less often.
func HostPool(next http.RoundTripper, pool hostpool.HostPool, port string) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		host, forced := forcedHost(req.Context())
		var picked hostpool.HostPoolResponse
		if !forced {
			picked = pool.Get()
			host = picked.Host()
		}

		r := req.Clone(req.Context())
		u := *req.URL
		u.Host = net.JoinHostPort(host, port)
		r.URL = &u
		r.Host = u.Host

		resp, err := next.RoundTrip(r)
		if picked != nil {
			picked.Mark(poolErr(resp, err))
		}
		return resp, err
	})
}

func poolErr(resp *http.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return errServerError
	}
	return nil
}
