// Copyright (C) 2017 ScyllaDB

package scyllaclient

import (
	"github.com/scylladb/go-set/strset"
)

// Token bounds of the Murmur3 partitioner.
const (
	Murmur3MinToken int64 = -(1 << 63)
	Murmur3MaxToken int64 = (1 << 63) - 1
)

// Ring describes token ranges of a keyspace.
type Ring struct {
	Tokens []TokenRange
	HostDC map[string]string
}

// Datacenters returns a list of datacenters the keyspace is replicated in.
func (r Ring) Datacenters() []string {
	v := strset.NewWithSize(len(r.HostDC))
	for _, dc := range r.HostDC {
		v.Add(dc)
	}
	return v.List()
}

// TokenRange describes replicas of a token (range).
type TokenRange struct {
	StartToken int64
	EndToken   int64
	Replicas   []string
}

// CommandStatus specifies a result of a command.
type CommandStatus string

// Command statuses.
const (
	CommandRunning    CommandStatus = "RUNNING"
	CommandSuccessful CommandStatus = "SUCCESSFUL"
	CommandFailed     CommandStatus = "FAILED"
)

// ringEntry is an element of describe_ring response.
type ringEntry struct {
	StartToken      string           `json:"start_token"`
	EndToken        string           `json:"end_token"`
	Endpoints       []string         `json:"endpoints"`
	EndpointDetails []endpointDetail `json:"endpoint_details"`
}

type endpointDetail struct {
	Host       string `json:"host"`
	Datacenter string `json:"datacenter"`
	Rack       string `json:"rack"`
}

// errorResponse is a Scylla REST API error body.
type errorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
