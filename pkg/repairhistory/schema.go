// Copyright (C) 2017 ScyllaDB

package repairhistory

import (
	"context"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

// ResolveTable returns reference of a table, it returns service.ErrNotFound
// if table does not exist.
func ResolveTable(ctx context.Context, session gocqlx.Session, keyspace, table string) (repair.TableReference, error) {
	q := SchemaTables.GetQuery(session, "id").WithContext(ctx).Bind(keyspace, table)
	defer q.Release()

	var id uuid.UUID
	if err := q.Scan(&id); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return repair.TableReference{}, service.ErrNotFound
		}
		return repair.TableReference{}, errors.Wrapf(err, "resolve table %s.%s", keyspace, table)
	}

	return repair.TableReference{
		ID:       id,
		Keyspace: keyspace,
		Table:    table,
	}, nil
}

type schemaTable struct {
	KeyspaceName string    `db:"keyspace_name"`
	TableName    string    `db:"table_name"`
	ID           uuid.UUID `db:"id"`
}

// SchemaLister lists tables from system_schema.tables.
type SchemaLister struct {
	session gocqlx.Session
}

func NewSchemaLister(session gocqlx.Session) SchemaLister {
	return SchemaLister{session: session}
}

// ListTables returns all tables of the cluster including system tables.
func (l SchemaLister) ListTables(ctx context.Context) ([]repair.TableReference, error) {
	q := qb.Select(SchemaTables.Name()).
		Columns(SchemaTables.Metadata().Columns...).
		Query(l.session).
		WithContext(ctx)
	defer q.Release()

	var rows []schemaTable
	if err := q.Select(&rows); err != nil {
		return nil, errors.Wrap(err, "list tables")
	}

	out := make([]repair.TableReference, len(rows))
	for i, r := range rows {
		out[i] = repair.TableReference{
			ID:       r.ID,
			Keyspace: r.KeyspaceName,
			Table:    r.TableName,
		}
	}
	return out, nil
}
