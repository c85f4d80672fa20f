// Copyright (C) 2017 ScyllaDB

package repairhistory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

// Entry is a row of repair history, range (RangeStart, RangeEnd] was
// repaired at RepairTime.
type Entry struct {
	RangeStart int64     `db:"range_start"`
	RangeEnd   int64     `db:"range_end"`
	RepairTime time.Time `db:"repair_time"`
}

// HistoryReader reads repair history of a table.
type HistoryReader interface {
	History(ctx context.Context, tableID uuid.UUID, since time.Time) ([]Entry, error)
}

// CQLHistory reads repair history from system.repair_history.
type CQLHistory struct {
	session gocqlx.Session
}

var _ HistoryReader = CQLHistory{}

func NewCQLHistory(session gocqlx.Session) CQLHistory {
	return CQLHistory{session: session}
}

// History returns repair history entries newer than since.
func (h CQLHistory) History(ctx context.Context, tableID uuid.UUID, since time.Time) ([]Entry, error) {
	q := qb.Select(RepairHistory.Name()).
		Columns("range_start", "range_end", "repair_time").
		Where(qb.Eq("table_uuid"), qb.GtOrEq("repair_time")).
		Query(h.session).
		WithContext(ctx).
		Bind(tableID, since)
	defer q.Release()

	var out []Entry
	if err := q.Select(&out); err != nil {
		return nil, errors.Wrap(err, "read repair history")
	}
	return out, nil
}
