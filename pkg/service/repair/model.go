// Copyright (C) 2017 ScyllaDB

package repair

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
	"go.uber.org/multierr"
)

// TableReference identifies a replicated table.
// References are equal when their IDs are equal, names are informative.
type TableReference struct {
	ID       uuid.UUID `json:"id"`
	Keyspace string    `json:"keyspace"`
	Table    string    `json:"table"`
}

func (t TableReference) String() string {
	return t.Keyspace + "." + t.Table
}

// Validate checks if reference can be used as a registry key.
func (t TableReference) Validate() error {
	var err error
	if t.ID == uuid.Nil {
		err = multierr.Append(err, errors.New("missing table id"))
	}
	if t.Keyspace == "" {
		err = multierr.Append(err, errors.New("missing keyspace"))
	}
	if t.Table == "" {
		err = multierr.Append(err, errors.New("missing table"))
	}
	return err
}

// TokenRange is a token range (StartToken, EndToken] replicated on
// Replicas.
type TokenRange struct {
	StartToken int64    `json:"start_token"`
	EndToken   int64    `json:"end_token"`
	Replicas   []string `json:"replicas"`
}

func (tr TokenRange) String() string {
	return fmt.Sprintf("(%d,%d]", tr.StartToken, tr.EndToken)
}

// RangeState holds the time of the last successful repair of a token range.
// Zero RepairedAt means that no repair was found in the history window.
type RangeState struct {
	TokenRange
	RepairedAt time.Time `json:"repaired_at"`
}

// State is a read only snapshot of repair state of a table.
type State struct {
	Ranges []RangeState `json:"ranges"`
	// HistoryFrom is the beginning of the history window the snapshot was
	// built from, ranges without repairs are at least that old.
	HistoryFrom time.Time `json:"history_from"`
	FetchedAt   time.Time `json:"fetched_at"`
}
