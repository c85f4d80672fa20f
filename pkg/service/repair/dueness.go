// Copyright (C) 2017 ScyllaDB

package repair

import (
	"math"
	"sort"
	"time"
)

// Dueness tells how urgently a table needs to be repaired.
type Dueness int

// Dueness enumeration, levels are ordered by urgency.
const (
	NotDue Dueness = iota
	Due
	Overdue
	Critical
)

func (d Dueness) String() string {
	switch d {
	case NotDue:
		return "not_due"
	case Due:
		return "due"
	case Overdue:
		return "overdue"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Verdict is a result of evaluation of a table repair state.
type Verdict struct {
	Dueness Dueness
	// DueRanges are ranges not repaired within the interval, least recently
	// repaired first.
	DueRanges []RangeState
	// RepairedRatio is the fraction of ranges repaired within the interval.
	RepairedRatio float64
	// OldestRepairedAt is the effective repair time of the least recently
	// repaired range, zero if it is unknown.
	OldestRepairedAt time.Time
	// Age of the least recently repaired range.
	Age time.Duration
	// NextRepair is when the table becomes due, now if it is due already.
	NextRepair time.Time
}

// Late returns by how much the least recently repaired range exceeds
// the interval, it's zero when table is not due.
func (v Verdict) Late(c Configuration) time.Duration {
	if v.Dueness == NotDue {
		return 0
	}
	return v.Age - c.Interval
}

// Evaluate decides if table with the given state is due for repair at
// the given time. It has no side effects.
//
// A range is due if it was not repaired within the interval. Ranges with no
// repair in the history are taken as repaired at the beginning of the
// history, or infinitely old if that is not known.
func Evaluate(s State, c Configuration, now time.Time) Verdict {
	if len(s.Ranges) == 0 {
		return Verdict{
			Dueness:       NotDue,
			RepairedRatio: 1,
			NextRepair:    now.Add(c.Interval),
		}
	}

	var (
		v        Verdict
		repaired int
		oldest   = time.Duration(math.MinInt64)
		unknown  bool
	)
	for _, r := range s.Ranges {
		at := effectiveRepairedAt(r, s)
		var age time.Duration
		if at.IsZero() {
			age = time.Duration(math.MaxInt64)
			unknown = true
		} else {
			age = now.Sub(at)
		}
		if age > oldest {
			oldest = age
			v.OldestRepairedAt = at
		}
		if age > c.Interval {
			v.DueRanges = append(v.DueRanges, r)
		} else {
			repaired++
		}
	}
	if unknown {
		v.OldestRepairedAt = time.Time{}
	}
	v.Age = oldest
	v.RepairedRatio = float64(repaired) / float64(len(s.Ranges))

	switch {
	case oldest > c.errorAfter():
		v.Dueness = Critical
	case oldest > c.warningAfter():
		v.Dueness = Overdue
	case oldest > c.Interval:
		v.Dueness = Due
	default:
		v.Dueness = NotDue
	}

	if v.Dueness == NotDue {
		v.NextRepair = v.OldestRepairedAt.Add(c.Interval)
	} else {
		v.NextRepair = now
	}

	sort.SliceStable(v.DueRanges, func(i, j int) bool {
		a, b := effectiveRepairedAt(v.DueRanges[i], s), effectiveRepairedAt(v.DueRanges[j], s)
		if !a.Equal(b) {
			return a.Before(b)
		}
		return v.DueRanges[i].StartToken < v.DueRanges[j].StartToken
	})

	return v
}

func effectiveRepairedAt(r RangeState, s State) time.Time {
	if r.RepairedAt.IsZero() {
		return s.HistoryFrom
	}
	return r.RepairedAt
}
