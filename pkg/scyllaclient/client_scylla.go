// Copyright (C) 2017 ScyllaDB

package scyllaclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/httpmw"
)

// DescribeRing returns a description of token range of a given table.
// Replicas of every range are sorted.
func (c *Client) DescribeRing(ctx context.Context, keyspace, table string) (Ring, error) {
	q := url.Values{}
	if table != "" {
		q.Set("table", table)
	}
	var resp []ringEntry
	if err := c.do(ctx, http.MethodGet, "/storage_service/describe_ring/"+url.PathEscape(keyspace), q, &resp); err != nil {
		return Ring{}, err
	}
	if len(resp) == 0 {
		return Ring{}, errors.New("received empty token range list")
	}

	ring := Ring{
		Tokens: make([]TokenRange, 0, len(resp)),
		HostDC: map[string]string{},
	}
	for _, p := range resp {
		startToken, err := strconv.ParseInt(p.StartToken, 10, 64)
		if err != nil {
			return Ring{}, errors.Wrap(err, "parse StartToken")
		}
		endToken, err := strconv.ParseInt(p.EndToken, 10, 64)
		if err != nil {
			return Ring{}, errors.Wrap(err, "parse EndToken")
		}

		replicas := append([]string(nil), p.Endpoints...)
		sort.Strings(replicas)
		ring.Tokens = append(ring.Tokens, TokenRange{
			StartToken: startToken,
			EndToken:   endToken,
			Replicas:   replicas,
		})

		for _, e := range p.EndpointDetails {
			ring.HostDC[e.Host] = e.Datacenter
		}
	}
	sort.Slice(ring.Tokens, func(i, j int) bool {
		return ring.Tokens[i].StartToken < ring.Tokens[j].StartToken
	})

	return ring, nil
}

// RepairAsync invokes async repair of token ranges on host and returns
// the repair command ID. If dcs are set only replicas in these datacenters
// take part in the repair.
func (c *Client) RepairAsync(ctx context.Context, host, keyspace, table string, ranges []TokenRange, dcs []string) (int32, error) {
	q := url.Values{}
	q.Set("columnFamilies", table)
	q.Set("ranges", dumpRanges(ranges))
	if len(dcs) > 0 {
		q.Set("dataCenters", strings.Join(dcs, ","))
	}

	var id int32
	if err := c.do(ForceHost(ctx, host), http.MethodPost, "/storage_service/repair_async/"+url.PathEscape(keyspace), q, &id); err != nil {
		return 0, err
	}
	return id, nil
}

func dumpRanges(ranges []TokenRange) string {
	var buf bytes.Buffer
	for i, ttr := range ranges {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		if ttr.StartToken > ttr.EndToken {
			_, _ = fmt.Fprintf(&buf, "%d:%d,%d:%d", ttr.StartToken, Murmur3MaxToken, Murmur3MinToken, ttr.EndToken)
		} else {
			_, _ = fmt.Fprintf(&buf, "%d:%d", ttr.StartToken, ttr.EndToken)
		}
	}
	return buf.String()
}

// RepairStatus waits up to RepairStatusWait for repair command to finish and
// returns its status.
func (c *Client) RepairStatus(ctx context.Context, host string, id int32) (CommandStatus, error) {
	wait := c.config.RepairStatusWait
	ctx, cancel := context.WithTimeout(httpmw.NoTimeout(ForceHost(ctx, host)), c.longPollingTimeout(wait))
	defer cancel()

	q := url.Values{}
	q.Set("id", strconv.Itoa(int(id)))
	q.Set("timeout", strconv.Itoa(int(wait/time.Second)))

	var status CommandStatus
	if err := c.do(ctx, http.MethodGet, "/storage_service/repair_status", q, &status); err != nil {
		return "", err
	}
	return status, nil
}

// ErrRepairTerminated is returned by Repair when the repair failed after
// the client terminated repairs on the host to stop another repair.
var ErrRepairTerminated = errors.New("repair terminated")

// Repair repairs token ranges of a table with host as repair coordinator
// and waits for the repair to finish. When ctx is canceled repairs on host
// are terminated, force_terminate_repair stops all repairs on the host,
// repairs of other tables coordinated by the host fail with
// ErrRepairTerminated.
func (c *Client) Repair(ctx context.Context, host, keyspace, table string, ranges []TokenRange, dcs []string) error {
	epoch := c.terminationEpoch(host)
	id, err := c.RepairAsync(ctx, host, keyspace, table, ranges, dcs)
	if err != nil {
		return errors.Wrapf(err, "host %s: schedule repair", host)
	}
	c.logger.Debug(ctx, "Repair scheduled", "host", host, "id", id, "ranges", len(ranges))

	for {
		status, err := c.RepairStatus(ctx, host, id)
		if ctx.Err() != nil {
			c.terminateRepair(host, id)
			return ctx.Err()
		}
		if err != nil {
			return errors.Wrapf(err, "host %s: get repair status", host)
		}

		switch status {
		case CommandSuccessful:
			return nil
		case CommandFailed:
			if c.terminationEpoch(host) != epoch {
				return errors.Wrapf(ErrRepairTerminated, "host %s: repair %d", host, id)
			}
			return errors.Errorf("host %s: repair %d failed", host, id)
		case CommandRunning:
		default:
			return errors.Errorf("host %s: unknown repair status %q", host, status)
		}
	}
}

func (c *Client) terminationEpoch(host string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminations[host]
}

func (c *Client) terminateRepair(host string, id int32) {
	c.mu.Lock()
	c.terminations[host]++
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
	defer cancel()

	if err := c.KillAllRepairs(ctx, host); err != nil {
		c.logger.Error(ctx, "Failed to terminate repair", "host", host, "id", id, "error", err)
		return
	}
	c.logger.Info(ctx, "Repair terminated", "host", host, "id", id)
}

// KillAllRepairs forces a termination of all repairs running on a host.
func (c *Client) KillAllRepairs(ctx context.Context, hosts ...string) error {
	for _, h := range hosts {
		if err := c.do(ForceHost(ctx, h), http.MethodPost, "/storage_service/force_terminate_repair", nil, nil); err != nil {
			return errors.Wrapf(err, "host %s", h)
		}
	}
	return nil
}
