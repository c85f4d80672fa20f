// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/httplog"
)

// httpError is a wrapper holding an error, HTTP status code and a user-facing
// message.
type httpError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	TraceID    string `json:"trace_id"`
}

func (e *httpError) Error() string {
	return e.Message
}

func respondBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Respond(w, r, &httpError{
		StatusCode: http.StatusBadRequest,
		Message:    errors.Wrap(err, "malformed request").Error(),
		TraceID:    log.TraceID(r.Context()),
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		render.Respond(w, r, &httpError{
			StatusCode: http.StatusNotFound,
			Message:    errors.Wrap(err, "get resource").Error(),
			TraceID:    log.TraceID(r.Context()),
		})
	case service.IsErrValidate(err):
		render.Respond(w, r, &httpError{
			StatusCode: http.StatusBadRequest,
			Message:    err.Error(),
			TraceID:    log.TraceID(r.Context()),
		})
	default:
		render.Respond(w, r, &httpError{
			StatusCode: http.StatusInternalServerError,
			Message:    err.Error(),
			TraceID:    log.TraceID(r.Context()),
		})
	}
}

func responder(w http.ResponseWriter, r *http.Request, v interface{}) {
	err, ok := v.(error)

	// If not an error use DefaultResponder
	if !ok {
		render.DefaultResponder(w, r, v)
		return
	}

	herr, _ := v.(*httpError)
	if herr == nil {
		herr = &httpError{
			StatusCode: http.StatusInternalServerError,
			Message:    errors.Wrap(err, "unexpected error, consult logs").Error(),
			TraceID:    log.TraceID(r.Context()),
		}
	}

	httplog.RequestLoggerSetRequestError(r, err)
	render.Status(r, herr.StatusCode)
	render.DefaultResponder(w, r, herr)
}
