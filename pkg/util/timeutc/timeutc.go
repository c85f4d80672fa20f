// Copyright (C) 2017 ScyllaDB

// Package timeutc keeps all wall clock readings in UTC, so that times read
// from repair history compare and print consistently.
package timeutc

import "time"

// Now returns current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// Since returns the time elapsed since t.
func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}
