// Copyright (C) 2017 ScyllaDB

package repair

import (
	"fmt"
)

// FaultLevel specifies severity of a table fault.
type FaultLevel int

// FaultLevel enumeration.
const (
	FaultCleared FaultLevel = iota
	FaultWarning
	FaultError
)

func (l FaultLevel) String() string {
	switch l {
	case FaultCleared:
		return "CLEARED"
	case FaultWarning:
		return "WARNING"
	case FaultError:
		return "ERROR"
	default:
		return fmt.Sprintf("FaultLevel(%d)", int(l))
	}
}

// FaultKind specifies what a fault is about.
type FaultKind string

// FaultKind enumeration.
const (
	// FaultUnrepaired is raised when table is not repaired in time, it's
	// cleared when table is repaired.
	FaultUnrepaired FaultKind = "unrepaired"
	// FaultExecution is reported on every failed repair step.
	FaultExecution FaultKind = "execution"
	// FaultState is reported when repair state can't be read repeatedly.
	FaultState FaultKind = "state"
)

// Fault is a notification about a table.
type Fault struct {
	Table TableReference
	Kind  FaultKind
	Level FaultLevel
	Cause error
}

func (f Fault) String() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s %s %s: %s", f.Table, f.Kind, f.Level, f.Cause)
	}
	return fmt.Sprintf("%s %s %s", f.Table, f.Kind, f.Level)
}

func faultLevel(d Dueness) FaultLevel {
	switch d {
	case Overdue:
		return FaultWarning
	case Critical:
		return FaultError
	default:
		return FaultCleared
	}
}
