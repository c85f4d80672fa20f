// Copyright (C) 2017 ScyllaDB

// Package dcfilter selects datacenters a repair is run in.
package dcfilter

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/inexlist"
)

func parse(filters []string) (inexlist.InExList, error) {
	if len(filters) == 0 {
		filters = []string{"*"}
	}
	l, err := inexlist.ParseInExList(filters)
	if err != nil {
		return inexlist.InExList{}, service.ErrValidate(errors.Wrapf(err, "parse dc filter %v", filters))
	}
	return l, nil
}

// Validate checks that filters are valid glob patterns, an empty list
// selects all DCs.
func Validate(filters []string) error {
	_, err := parse(filters)
	return err
}

// Apply returns sorted DCs selected by filters. It's a validation error if
// no DC is selected.
func Apply(dcs, filters []string) ([]string, error) {
	l, err := parse(filters)
	if err != nil {
		return nil, err
	}
	out := l.Filter(dcs)
	if len(out) == 0 {
		return nil, service.ErrValidate(errors.Errorf("no matching DCs found for filters %s", filters))
	}
	sort.Strings(out)
	return out, nil
}
