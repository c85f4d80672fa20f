// Copyright (C) 2017 ScyllaDB

package repairhistory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-set/strset"
	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/inexlist/dcfilter"
)

// RingDescriber describes token ring of a table.
type RingDescriber interface {
	DescribeRing(ctx context.Context, keyspace, table string) (scyllaclient.Ring, error)
}

// Factory creates repair state sources that join token ring with repair
// history.
type Factory struct {
	ring    RingDescriber
	history HistoryReader
	now     func() time.Time
	logger  log.Logger
}

var _ repair.StateFactory = &Factory{}

func NewFactory(ring RingDescriber, history HistoryReader, now func() time.Time, logger log.Logger) *Factory {
	return &Factory{
		ring:    ring,
		history: history,
		now:     now,
		logger:  logger,
	}
}

// NewStateSource implements repair.StateFactory.
func (f *Factory) NewStateSource(table repair.TableReference, c repair.Configuration) repair.StateSource {
	return &source{
		Factory: f,
		table:   table,
		config:  c,
	}
}

type source struct {
	*Factory
	table  repair.TableReference
	config repair.Configuration
}

// State returns ranges of the table replicated in the configured
// datacenters with their last repair time.
func (s *source) State(ctx context.Context) (repair.State, error) {
	ring, err := s.ring.DescribeRing(ctx, s.table.Keyspace, s.table.Table)
	if err != nil {
		return repair.State{}, errors.Wrap(err, "describe ring")
	}
	dcs, err := dcfilter.Apply(ring.Datacenters(), s.config.DC)
	if err != nil {
		return repair.State{}, err
	}

	now := s.now()
	since := now.Add(-s.config.HistoryWindow())
	entries, err := s.history.History(ctx, s.table.ID, since)
	if err != nil {
		return repair.State{}, err
	}

	ranges := filterRanges(ring, strset.New(dcs...))
	times := mergeHistory(ranges, entries)

	state := repair.State{
		Ranges:      make([]repair.RangeState, len(ranges)),
		HistoryFrom: since,
		FetchedAt:   now,
	}
	for i, r := range ranges {
		state.Ranges[i] = repair.RangeState{
			TokenRange: repair.TokenRange{
				StartToken: r.StartToken,
				EndToken:   r.EndToken,
				Replicas:   r.Replicas,
			},
			RepairedAt: times[i],
		}
	}

	s.logger.Debug(ctx, "Repair state",
		"table", s.table.String(),
		"ranges", len(state.Ranges),
		"history_entries", len(entries),
	)
	return state, nil
}

// filterRanges returns ranges with at least one replica in dcs, replicas
// are limited to dcs.
func filterRanges(ring scyllaclient.Ring, dcs *strset.Set) []scyllaclient.TokenRange {
	var out []scyllaclient.TokenRange
	for _, r := range ring.Tokens {
		var replicas []string
		for _, h := range r.Replicas {
			if dcs.Has(ring.HostDC[h]) {
				replicas = append(replicas, h)
			}
		}
		if len(replicas) == 0 {
			continue
		}
		out = append(out, scyllaclient.TokenRange{
			StartToken: r.StartToken,
			EndToken:   r.EndToken,
			Replicas:   replicas,
		})
	}
	return out
}
