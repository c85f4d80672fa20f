// Copyright (C) 2017 ScyllaDB

package httpmw

import (
	"fmt"
	"net/http"

	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/timeutc"
)

// Logger logs requests and responses on debug level.
func Logger(next http.RoundTripper, logger log.Logger) http.RoundTripper {
	return RoundTripperFunc(func(req *http.Request) (resp *http.Response, err error) {
		start := timeutc.Now()
		resp, err = next.RoundTrip(req)

		f := []interface{}{
			"host", req.URL.Host,
			"method", req.Method,
			"uri", req.URL.RequestURI(),
			"duration", fmt.Sprintf("%dms", timeutc.Since(start).Milliseconds()),
		}
		if resp != nil {
			f = append(f, "status", resp.StatusCode)
		}
		if err != nil {
			f = append(f, "error", err)
		}
		logger.Debug(req.Context(), "HTTP", f...)

		return resp, err
	})
}
