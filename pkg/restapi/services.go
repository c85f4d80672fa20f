// Copyright (C) 2017 ScyllaDB

//go:generate mockgen -destination mock_repairservice_test.go -mock_names RepairService=MockRepairService -package restapi github.com/scylladb/scylla-repair-scheduler/pkg/restapi RepairService

package restapi

import (
	"context"

	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
)

// Services contains REST API services.
type Services struct {
	Repair RepairService
	Faults FaultService
	// DefaultConfiguration is the base of configurations put with
	// partial request bodies.
	DefaultConfiguration repair.Configuration
}

// RepairService service interface for the REST API handlers.
type RepairService interface {
	Jobs(filter repair.JobFilter) []repair.JobStatus
	Job(id uuid.UUID) (repair.JobStatus, error)
	PutConfiguration(ctx context.Context, table repair.TableReference, c repair.Configuration) error
	RemoveConfiguration(ctx context.Context, table repair.TableReference)
}

// FaultService service interface for the REST API handlers.
type FaultService interface {
	Active() []repair.Fault
}
