// Copyright (C) 2017 ScyllaDB

package pkg

var version = "Snapshot"

// Version returns the application version, it's set at build time with
// -ldflags "-X github.com/scylladb/scylla-repair-scheduler/pkg.version=...".
func Version() string {
	return version
}
