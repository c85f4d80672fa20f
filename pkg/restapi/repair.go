// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

type repairHandler struct {
	svc    RepairService
	faults FaultService
	def    repair.Configuration
}

func newRepairHandler(services Services) *chi.Mux {
	m := chi.NewMux()
	h := repairHandler{
		svc:    services.Repair,
		faults: services.Faults,
		def:    services.DefaultConfiguration,
	}

	m.Get("/jobs", h.listJobs)
	m.Get("/jobs/{id}", h.getJob)
	m.Get("/faults", h.listFaults)
	m.Route("/config/{keyspace}/{table}", func(r chi.Router) {
		r.Use(h.tableCtx)
		r.Put("/", h.putConfiguration)
		r.Delete("/", h.deleteConfiguration)
	})

	return m
}

// ctxt is a context key type.
type ctxt byte

const (
	ctxTable ctxt = iota
)

func (h repairHandler) tableCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.URL.Query().Get("id"))
		if err != nil {
			respondBadRequest(w, r, errors.Wrap(err, "invalid id query parameter"))
			return
		}
		t := repair.TableReference{
			ID:       id,
			Keyspace: chi.URLParam(r, "keyspace"),
			Table:    chi.URLParam(r, "table"),
		}
		if err := t.Validate(); err != nil {
			respondBadRequest(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxTable, t)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func mustTableFromCtx(r *http.Request) repair.TableReference {
	t, ok := r.Context().Value(ctxTable).(repair.TableReference)
	if !ok {
		panic("missing table in context")
	}
	return t
}

func (h repairHandler) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repair.JobFilter{
		Keyspace: q.Get("keyspace"),
		Table:    q.Get("table"),
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondBadRequest(w, r, errors.Errorf("invalid limit %q", v))
			return
		}
		f.Limit = limit
	}

	jobs := h.svc.Jobs(f)
	resp := jobsResponse{
		Jobs:    make([]jobResponse, 0, len(jobs)),
		Summary: repair.Summarize(jobs),
	}
	for _, j := range jobs {
		resp.Jobs = append(resp.Jobs, makeJobResponse(j))
	}
	render.Respond(w, r, resp)
}

func (h repairHandler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	j, err := h.svc.Job(id)
	if err != nil {
		respondError(w, r, errors.Wrapf(err, "load job %s", id))
		return
	}
	render.Respond(w, r, makeJobResponse(j))
}

func (h repairHandler) listFaults(w http.ResponseWriter, r *http.Request) {
	resp := []faultResponse{}
	if h.faults != nil {
		for _, f := range h.faults.Active() {
			resp = append(resp, makeFaultResponse(f))
		}
	}
	render.Respond(w, r, resp)
}

func (h repairHandler) putConfiguration(w http.ResponseWriter, r *http.Request) {
	var c configuration
	if err := render.DecodeJSON(r.Body, &c); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	t := mustTableFromCtx(r)
	conf := c.merge(h.def)
	if err := h.svc.PutConfiguration(r.Context(), t, conf); err != nil {
		respondError(w, r, errors.Wrapf(err, "put configuration of %s", t))
		return
	}
	render.Respond(w, r, makeConfiguration(conf))
}

func (h repairHandler) deleteConfiguration(w http.ResponseWriter, r *http.Request) {
	h.svc.RemoveConfiguration(r.Context(), mustTableFromCtx(r))
	w.WriteHeader(http.StatusOK)
}
