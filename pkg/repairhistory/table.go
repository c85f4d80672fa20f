// Copyright (C) 2017 ScyllaDB

package repairhistory

import "github.com/scylladb/gocqlx/v2/table"

// Table models
var (
	// RepairHistory is maintained by Scylla, a row is added for every
	// repaired range.
	RepairHistory = table.New(table.Metadata{
		Name: "system.repair_history",
		Columns: []string{
			"table_uuid",
			"repair_time",
			"repair_uuid",
			"range_start",
			"range_end",
			"keyspace_name",
			"table_name",
		},
		PartKey: []string{"table_uuid"},
		SortKey: []string{"repair_time", "repair_uuid", "range_start", "range_end"},
	})

	SchemaTables = table.New(table.Metadata{
		Name: "system_schema.tables",
		Columns: []string{
			"keyspace_name",
			"table_name",
			"id",
		},
		PartKey: []string{"keyspace_name"},
		SortKey: []string{"table_name"},
	})
)
