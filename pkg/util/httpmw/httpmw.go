// Copyright (C) 2017 ScyllaDB

package httpmw

import "net/http"

// RoundTripperFunc is an http.RoundTripper adapter for ordinary functions.
type RoundTripperFunc func(req *http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
