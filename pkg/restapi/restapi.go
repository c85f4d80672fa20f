// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/httplog"
)

func init() {
	render.Respond = responder
}

// New returns an http.Handler implementing repair scheduler v1 REST API.
func New(services Services, logger log.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		httplog.TraceID,
		httplog.RequestLogger(logger, "/ping"),
		render.SetContentType(render.ContentTypeJSON),
	)

	r.Get("/ping", heartbeat())
	r.Get("/version", versionHandler())

	r.Mount("/api/v1/repair", newRepairHandler(services))

	// NotFound registered last due to https://github.com/go-chi/chi/issues/297
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.Context(), "Request path not found", "path", r.URL.Path)
		render.Respond(w, r, &httpError{
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("find endpoint for path %s", r.URL.Path),
			TraceID:    log.TraceID(r.Context()),
		})
	})

	return r
}

// NewPrometheus returns an http.Handler exposing Prometheus metrics on
// '/metrics'.
func NewPrometheus() http.Handler {
	r := chi.NewRouter()
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

// heartbeat responds with status 204.
func heartbeat() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

type version struct {
	Version string `json:"version"`
}

// versionHandler responds with application version.
func versionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.Respond(w, r, version{Version: pkg.Version()})
	}
}
