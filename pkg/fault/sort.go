// Copyright (C) 2017 ScyllaDB

package fault

import (
	"sort"

	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
)

func sortFaults(faults []repair.Fault) {
	sort.Slice(faults, func(i, j int) bool {
		a, b := faults[i], faults[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Table.Keyspace != b.Table.Keyspace {
			return a.Table.Keyspace < b.Table.Keyspace
		}
		if a.Table.Table != b.Table.Table {
			return a.Table.Table < b.Table.Table
		}
		return a.Kind < b.Kind
	})
}
