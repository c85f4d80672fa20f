// Copyright (C) 2017 ScyllaDB

package httplog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/scylladb/go-log"
)

// TraceID adds trace ID to incoming request.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(log.WithNewTraceID(r.Context())))
	})
}

// RequestLogger logs a line per request. Server errors are logged at error
// level, requests to quiet paths, such as health checks, at debug level.
func RequestLogger(logger log.Logger, quiet ...string) func(next http.Handler) http.Handler {
	f := formatter{
		logger: logger,
		quiet:  make(map[string]struct{}, len(quiet)),
	}
	for _, p := range quiet {
		f.quiet[p] = struct{}{}
	}
	return middleware.RequestLogger(f)
}

// RequestLoggerSetRequestError attaches err to the request log line.
func RequestLoggerSetRequestError(r *http.Request, err error) {
	if e, ok := middleware.GetLogEntry(r).(*entry); ok {
		e.err = err
	}
}

type formatter struct {
	logger log.Logger
	quiet  map[string]struct{}
}

func (f formatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	_, quiet := f.quiet[r.URL.Path]
	return &entry{req: r, logger: f.logger, quiet: quiet}
}

type entry struct {
	req    *http.Request
	logger log.Logger
	quiet  bool
	err    error
}

func (e *entry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	ctx := e.req.Context()
	msg := e.req.Method + " " + e.req.URL.RequestURI()
	kv := []interface{}{
		"from", e.req.RemoteAddr,
		"status", status,
		"bytes", bytes,
		"duration", fmt.Sprintf("%dms", elapsed.Milliseconds()),
	}
	if e.err != nil {
		kv = append(kv, "error", e.err)
	}

	switch {
	case status >= http.StatusInternalServerError:
		e.logger.Error(ctx, msg, kv...)
	case e.quiet && e.err == nil:
		e.logger.Debug(ctx, msg, kv...)
	default:
		e.logger.Info(ctx, msg, kv...)
	}
}

func (e *entry) Panic(v interface{}, stack []byte) {
	e.logger.Error(e.req.Context(), "Panic", "panic", v, "stack", string(stack))
}
