// Copyright (C) 2017 ScyllaDB

package repairexec

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-set/strset"
	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/inexlist/dcfilter"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/parallel"
)

// Client is the subset of scyllaclient.Client used by Proxy.
type Client interface {
	DescribeRing(ctx context.Context, keyspace, table string) (scyllaclient.Ring, error)
	Repair(ctx context.Context, host, keyspace, table string, ranges []scyllaclient.TokenRange, dcs []string) error
}

// Proxy executes repair steps on Scylla nodes. Ranges of a step are grouped
// by coordinator host and the groups are repaired in parallel.
type Proxy struct {
	client Client
	logger log.Logger
}

var _ repair.Executor = &Proxy{}

func NewProxy(client Client, logger log.Logger) *Proxy {
	return &Proxy{
		client: client,
		logger: logger,
	}
}

type hostRanges struct {
	Host   string
	Ranges []scyllaclient.TokenRange
}

// Repair implements repair.Executor.
func (p *Proxy) Repair(ctx context.Context, table repair.TableReference, ranges []repair.TokenRange, c repair.Configuration) error {
	if len(ranges) == 0 {
		return nil
	}

	ring, err := p.client.DescribeRing(ctx, table.Keyspace, table.Table)
	if err != nil {
		return errors.Wrap(err, "describe ring")
	}
	dcs, err := dcfilter.Apply(ring.Datacenters(), c.DC)
	if err != nil {
		return err
	}

	groups, err := groupByCoordinator(ranges, ring.HostDC, strset.New(dcs...))
	if err != nil {
		return err
	}

	// Repair with all DCs is the default, dataCenters parameter is set only
	// when some DCs are excluded.
	if len(dcs) == len(ring.Datacenters()) {
		dcs = nil
	}

	return parallel.Run(ctx, len(groups), parallel.NoLimit, func(ctx context.Context, i int) error {
		g := groups[i]
		p.logger.Info(ctx, "Repairing ranges on host",
			"table", table.String(),
			"host", g.Host,
			"ranges", len(g.Ranges),
		)
		err := p.client.Repair(ctx, g.Host, table.Keyspace, table.Table, g.Ranges, dcs)
		if errors.Is(err, scyllaclient.ErrRepairTerminated) {
			return errors.Wrapf(repair.ErrStepInterrupted, "host %s: %s", g.Host, err)
		}
		if err != nil {
			return errors.Wrapf(err, "host %s", g.Host)
		}
		return nil
	})
}

// groupByCoordinator assigns every range to its lowest replica in the
// included DCs.
func groupByCoordinator(ranges []repair.TokenRange, hostDC map[string]string, dcs *strset.Set) ([]hostRanges, error) {
	m := make(map[string][]scyllaclient.TokenRange)
	for _, r := range ranges {
		var coordinator string
		for _, h := range r.Replicas {
			if !dcs.Has(hostDC[h]) {
				continue
			}
			if coordinator == "" || h < coordinator {
				coordinator = h
			}
		}
		if coordinator == "" {
			return nil, errors.Errorf("no replica of range %s in datacenters %s", r, dcs)
		}
		m[coordinator] = append(m[coordinator], scyllaclient.TokenRange{
			StartToken: r.StartToken,
			EndToken:   r.EndToken,
			Replicas:   r.Replicas,
		})
	}

	out := make([]hostRanges, 0, len(m))
	for h, tr := range m {
		out = append(out, hostRanges{Host: h, Ranges: tr})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Host < out[j].Host
	})
	return out, nil
}
