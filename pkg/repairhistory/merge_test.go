// Copyright (C) 2017 ScyllaDB

package repairhistory

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
)

func TestMergeHistory(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time {
		return t0.Add(time.Duration(h) * time.Hour)
	}

	ranges := []scyllaclient.TokenRange{
		{StartToken: 0, EndToken: 100},
		{StartToken: 100, EndToken: 200},
		{StartToken: 200, EndToken: 300},
		{StartToken: 300, EndToken: 0},
	}

	table := []struct {
		Name    string
		Entries []Entry
		Golden  []time.Time
	}{
		{
			Name:   "no history",
			Golden: []time.Time{{}, {}, {}, {}},
		},
		{
			Name: "exact ranges newest wins",
			Entries: []Entry{
				{RangeStart: 0, RangeEnd: 100, RepairTime: at(1)},
				{RangeStart: 0, RangeEnd: 100, RepairTime: at(3)},
				{RangeStart: 100, RangeEnd: 200, RepairTime: at(2)},
			},
			Golden: []time.Time{at(3), at(2), {}, {}},
		},
		{
			Name: "sub ranges",
			Entries: []Entry{
				{RangeStart: 200, RangeEnd: 250, RepairTime: at(5)},
				{RangeStart: 250, RangeEnd: 300, RepairTime: at(4)},
				{RangeStart: 100, RangeEnd: 150, RepairTime: at(4)},
			},
			Golden: []time.Time{{}, {}, at(4), {}},
		},
		{
			Name: "overlapping sub ranges out of order",
			Entries: []Entry{
				{RangeStart: 150, RangeEnd: 200, RepairTime: at(6)},
				{RangeStart: 100, RangeEnd: 120, RepairTime: at(5)},
				{RangeStart: 110, RangeEnd: 160, RepairTime: at(4)},
				{RangeStart: 100, RangeEnd: 200, RepairTime: at(1)},
			},
			Golden: []time.Time{at(1), at(4), at(1), {}},
		},
		{
			Name: "super range",
			Entries: []Entry{
				{RangeStart: -1000, RangeEnd: 1000, RepairTime: at(2)},
			},
			Golden: []time.Time{at(2), at(2), at(2), {}},
		},
		{
			Name: "wrap around",
			Entries: []Entry{
				{RangeStart: 300, RangeEnd: 0, RepairTime: at(6)},
			},
			Golden: []time.Time{{}, {}, {}, at(6)},
		},
		{
			Name: "wrap around split",
			Entries: []Entry{
				{RangeStart: 300, RangeEnd: scyllaclient.Murmur3MaxToken, RepairTime: at(6)},
				{RangeStart: scyllaclient.Murmur3MinToken, RangeEnd: 0, RepairTime: at(7)},
			},
			Golden: []time.Time{{}, {}, {}, at(6)},
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(mergeHistory(ranges, test.Entries), test.Golden); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestRepairedAtManyEntries(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Range (0, 100000] repaired in unit pieces, every other piece first.
	const n = 100000
	entries := make([]Entry, 0, n)
	for k := int64(0); k < n; k += 2 {
		entries = append(entries, Entry{RangeStart: k, RangeEnd: k + 1, RepairTime: t0.Add(2 * time.Hour)})
	}
	for k := int64(1); k < n; k += 2 {
		entries = append(entries, Entry{RangeStart: k, RangeEnd: k + 1, RepairTime: t0.Add(time.Hour)})
	}

	if at := repairedAt(interval{Start: 0, End: n}, entries); !at.Equal(t0.Add(time.Hour)) {
		t.Fatalf("repairedAt() = %s, expected %s", at, t0.Add(time.Hour))
	}
}
