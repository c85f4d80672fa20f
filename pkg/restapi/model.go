// Copyright (C) 2017 ScyllaDB

package restapi

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
)

// duration is time.Duration encoded as a string i.e. "24h".
type duration time.Duration

func (d duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.Wrap(err, "duration must be a string i.e. 24h")
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(v)
	return nil
}

// configuration is the API representation of repair.Configuration,
// missing request fields are taken from the default configuration.
type configuration struct {
	Interval        *duration `json:"interval,omitempty"`
	WarningMultiple *float64  `json:"warning_multiple,omitempty"`
	ErrorMultiple   *float64  `json:"error_multiple,omitempty"`
	Parallelism     *int      `json:"parallelism,omitempty"`
	UnwindRatio     *float64  `json:"unwind_ratio,omitempty"`
	DC              []string  `json:"dc,omitempty"`
	Priority        *int      `json:"priority,omitempty"`
}

func makeConfiguration(c repair.Configuration) configuration {
	d := duration(c.Interval)
	return configuration{
		Interval:        &d,
		WarningMultiple: &c.WarningMultiple,
		ErrorMultiple:   &c.ErrorMultiple,
		Parallelism:     &c.Parallelism,
		UnwindRatio:     &c.UnwindRatio,
		DC:              c.DC,
		Priority:        &c.Priority,
	}
}

func (c configuration) merge(base repair.Configuration) repair.Configuration {
	out := base
	if c.Interval != nil {
		out.Interval = time.Duration(*c.Interval)
	}
	if c.WarningMultiple != nil {
		out.WarningMultiple = *c.WarningMultiple
	}
	if c.ErrorMultiple != nil {
		out.ErrorMultiple = *c.ErrorMultiple
	}
	if c.Parallelism != nil {
		out.Parallelism = *c.Parallelism
	}
	if c.UnwindRatio != nil {
		out.UnwindRatio = *c.UnwindRatio
	}
	if c.DC != nil {
		out.DC = c.DC
	}
	if c.Priority != nil {
		out.Priority = *c.Priority
	}
	return out
}

type jobResponse struct {
	repair.JobStatus
	Configuration configuration `json:"configuration"`
}

func makeJobResponse(s repair.JobStatus) jobResponse {
	return jobResponse{
		JobStatus:     s,
		Configuration: makeConfiguration(s.Configuration),
	}
}

type jobsResponse struct {
	Jobs    []jobResponse  `json:"jobs"`
	Summary repair.Summary `json:"summary"`
}

type faultResponse struct {
	repair.TableReference
	Kind  repair.FaultKind `json:"kind"`
	Level string           `json:"level"`
	Cause string           `json:"cause,omitempty"`
}

func makeFaultResponse(f repair.Fault) faultResponse {
	out := faultResponse{
		TableReference: f.Table,
		Kind:           f.Kind,
		Level:          f.Level.String(),
	}
	if f.Cause != nil {
		out.Cause = f.Cause.Error()
	}
	return out
}
