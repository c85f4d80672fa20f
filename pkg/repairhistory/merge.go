// Copyright (C) 2017 ScyllaDB

package repairhistory

import (
	"container/heap"
	"sort"
	"time"

	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
)

// interval is a token interval (Start, End], Start < End.
type interval struct {
	Start int64
	End   int64
}

// split returns non wrapping intervals of a token range (start, end].
func split(start, end int64) []interval {
	if start < end {
		return []interval{{Start: start, End: end}}
	}
	var out []interval
	if start < scyllaclient.Murmur3MaxToken {
		out = append(out, interval{Start: start, End: scyllaclient.Murmur3MaxToken})
	}
	if end > scyllaclient.Murmur3MinToken {
		out = append(out, interval{Start: scyllaclient.Murmur3MinToken, End: end})
	}
	return out
}

func (i interval) overlaps(o interval) bool {
	return i.Start < o.End && o.Start < i.End
}

type piece struct {
	interval
	At time.Time
}

// newestFirst is a max heap of pieces by repair time.
type newestFirst []piece

func (h newestFirst) Len() int            { return len(h) }
func (h newestFirst) Less(i, j int) bool  { return h[i].At.After(h[j].At) }
func (h newestFirst) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *newestFirst) Push(x interface{}) { *h = append(*h, x.(piece)) }
func (h *newestFirst) Pop() interface{} {
	old := *h
	p := old[len(old)-1]
	*h = old[:len(old)-1]
	return p
}

// repairedAt returns the latest time T such that the whole interval was
// repaired at or after T, or zero time if it's not fully repaired.
// That is the oldest of the newest repair times of the interval tokens,
// it's found by sweeping the interval with the newest covering piece at hand.
func repairedAt(i interval, entries []Entry) time.Time {
	var pieces []piece
	for _, e := range entries {
		for _, p := range split(e.RangeStart, e.RangeEnd) {
			if !p.overlaps(i) {
				continue
			}
			if p.Start < i.Start {
				p.Start = i.Start
			}
			if p.End > i.End {
				p.End = i.End
			}
			pieces = append(pieces, piece{interval: p, At: e.RepairTime})
		}
	}
	sort.Slice(pieces, func(a, b int) bool {
		return pieces[a].Start < pieces[b].Start
	})

	var (
		active newestFirst
		oldest time.Time
		next   int
	)
	for pos := i.Start; pos < i.End; {
		for next < len(pieces) && pieces[next].Start <= pos {
			heap.Push(&active, pieces[next])
			next++
		}
		for active.Len() > 0 && active[0].End <= pos {
			heap.Pop(&active)
		}
		if active.Len() == 0 {
			return time.Time{}
		}

		top := active[0]
		if oldest.IsZero() || top.At.Before(oldest) {
			oldest = top.At
		}
		pos = top.End
		if next < len(pieces) && pieces[next].Start < pos {
			pos = pieces[next].Start
		}
	}
	return oldest
}

// mergeHistory returns repair time of every ring range.
func mergeHistory(ranges []scyllaclient.TokenRange, entries []Entry) []time.Time {
	out := make([]time.Time, len(ranges))
	for k, r := range ranges {
		var oldest time.Time
		for n, p := range split(r.StartToken, r.EndToken) {
			at := repairedAt(p, entries)
			if at.IsZero() {
				oldest = time.Time{}
				break
			}
			if n == 0 || at.Before(oldest) {
				oldest = at
			}
		}
		out[k] = oldest
	}
	return out
}
