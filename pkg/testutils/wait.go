// Copyright (C) 2017 ScyllaDB

// Package testutils contains helpers shared by package tests.
package testutils

import (
	"testing"
	"time"
)

// WaitCond polls cond every interval and fails the test if cond does not
// hold within wait.
func WaitCond(t *testing.T, cond func() bool, interval, wait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(wait)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", wait)
		}
		time.Sleep(interval)
	}
}

// WaitClosed fails the test if ch is not closed within wait.
func WaitClosed(t *testing.T, ch <-chan struct{}, wait time.Duration) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(wait):
		t.Fatalf("channel not closed within %s", wait)
	}
}
