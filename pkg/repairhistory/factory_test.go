// Copyright (C) 2017 ScyllaDB

package repairhistory

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/scylladb/go-log"
	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

type fakeRing scyllaclient.Ring

func (f fakeRing) DescribeRing(ctx context.Context, keyspace, table string) (scyllaclient.Ring, error) {
	return scyllaclient.Ring(f), nil
}

type fakeHistory struct {
	entries []Entry
	since   time.Time
}

func (f *fakeHistory) History(ctx context.Context, tableID uuid.UUID, since time.Time) ([]Entry, error) {
	f.since = since
	return f.entries, nil
}

func TestSourceState(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ring := fakeRing{
		Tokens: []scyllaclient.TokenRange{
			{StartToken: 0, EndToken: 100, Replicas: []string{"192.168.100.11", "192.168.100.21"}},
			{StartToken: 100, EndToken: 0, Replicas: []string{"192.168.100.21"}},
		},
		HostDC: map[string]string{
			"192.168.100.11": "dc1",
			"192.168.100.21": "dc2",
		},
	}
	history := &fakeHistory{
		entries: []Entry{
			{RangeStart: 0, RangeEnd: 100, RepairTime: now.Add(-time.Hour)},
		},
	}
	f := NewFactory(ring, history, func() time.Time { return now }, log.NewDevelopment())

	table := repair.TableReference{ID: uuid.MustRandom(), Keyspace: "ks", Table: "t"}
	c := repair.DefaultConfiguration()
	c.Interval = time.Hour
	c.DC = []string{"dc1"}

	s, err := f.NewStateSource(table, c).State(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	golden := repair.State{
		Ranges: []repair.RangeState{
			{
				TokenRange: repair.TokenRange{StartToken: 0, EndToken: 100, Replicas: []string{"192.168.100.11"}},
				RepairedAt: now.Add(-time.Hour),
			},
		},
		HistoryFrom: now.Add(-4 * time.Hour),
		FetchedAt:   now,
	}
	if diff := cmp.Diff(s, golden); diff != "" {
		t.Fatal(diff)
	}
	if !history.since.Equal(golden.HistoryFrom) {
		t.Fatalf("History() since %s, expected %s", history.since, golden.HistoryFrom)
	}
}

func TestSourceStateNoMatchingDC(t *testing.T) {
	t.Parallel()

	ring := fakeRing{
		Tokens: []scyllaclient.TokenRange{{StartToken: 0, EndToken: 100, Replicas: []string{"192.168.100.11"}}},
		HostDC: map[string]string{"192.168.100.11": "dc1"},
	}
	f := NewFactory(ring, &fakeHistory{}, time.Now, log.NewDevelopment())

	c := repair.DefaultConfiguration()
	c.DC = []string{"dc3"}
	if _, err := f.NewStateSource(repair.TableReference{ID: uuid.MustRandom(), Keyspace: "ks", Table: "t"}, c).State(context.Background()); err == nil {
		t.Fatal("State() expected error")
	}
}
