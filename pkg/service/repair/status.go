// Copyright (C) 2017 ScyllaDB

package repair

import (
	"fmt"
	"sort"
	"time"

	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

// Status is a user facing state of a table repair job.
type Status string

// Status enumeration.
const (
	StatusCompleted Status = "COMPLETED"
	StatusInQueue   Status = "IN_QUEUE"
	StatusWarning   Status = "WARNING"
	StatusError     Status = "ERROR"
)

func statusOf(d Dueness) Status {
	switch d {
	case NotDue:
		return StatusCompleted
	case Overdue:
		return StatusWarning
	case Critical:
		return StatusError
	default:
		return StatusInQueue
	}
}

// JobStatus describes a table repair job.
type JobStatus struct {
	ID                  uuid.UUID     `json:"id"`
	TableID             uuid.UUID     `json:"table_id"`
	Keyspace            string        `json:"keyspace"`
	Table               string        `json:"table"`
	Status              Status        `json:"status"`
	RepairedRatio       float64       `json:"repaired_ratio"`
	CompletedAt         time.Time     `json:"completed_at"`
	NextRepair          time.Time     `json:"next_repair"`
	Recurring           bool          `json:"recurring"`
	Running             bool          `json:"running"`
	Lifecycle           string        `json:"lifecycle"`
	Configuration       Configuration `json:"configuration"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	LastError           string        `json:"last_error,omitempty"`
	Runs                int64         `json:"runs"`
	Ranges              []RangeStatus `json:"ranges,omitempty"`
}

// RangeStatus describes repair state of a single token range.
type RangeStatus struct {
	TokenRange
	RepairedAt time.Time `json:"repaired_at"`
	Repaired   bool      `json:"repaired"`
}

func rangeStatuses(s State, c Configuration, now time.Time) []RangeStatus {
	out := make([]RangeStatus, 0, len(s.Ranges))
	for _, r := range s.Ranges {
		at := effectiveRepairedAt(r, s)
		out = append(out, RangeStatus{
			TokenRange: r.TokenRange,
			RepairedAt: r.RepairedAt,
			Repaired:   !at.IsZero() && now.Sub(at) <= c.Interval,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartToken < out[j].StartToken
	})
	return out
}

// JobFilter specifies which jobs to list, empty fields match all.
type JobFilter struct {
	Keyspace string
	Table    string
	Limit    int
}

func (f JobFilter) match(t TableReference) bool {
	return (f.Keyspace == "" || f.Keyspace == t.Keyspace) && (f.Table == "" || f.Table == t.Table)
}

// Summary counts jobs by status.
type Summary struct {
	Completed int `json:"completed"`
	InQueue   int `json:"in_queue"`
	Warning   int `json:"warning"`
	Error     int `json:"error"`
}

// Summarize returns summary of the jobs.
func Summarize(jobs []JobStatus) Summary {
	var s Summary
	for _, j := range jobs {
		switch j.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInQueue:
			s.InQueue++
		case StatusWarning:
			s.Warning++
		case StatusError:
			s.Error++
		}
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("%d completed, %d in queue, %d warning, %d error", s.Completed, s.InQueue, s.Warning, s.Error)
}
