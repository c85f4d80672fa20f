// Copyright (C) 2017 ScyllaDB

package dcfilter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service"
)

func TestApply(t *testing.T) {
	dcs := []string{"dc3", "dc1", "dc2"}

	table := []struct {
		Name    string
		Filters []string
		Golden  []string
	}{
		{
			Name:   "no filters",
			Golden: []string{"dc1", "dc2", "dc3"},
		},
		{
			Name:    "exclude",
			Filters: []string{"*", "!dc2"},
			Golden:  []string{"dc1", "dc3"},
		},
		{
			Name:    "include",
			Filters: []string{"dc3"},
			Golden:  []string{"dc3"},
		},
	}

	for i := range table {
		test := table[i]
		t.Run(test.Name, func(t *testing.T) {
			v, err := Apply(dcs, test.Filters)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(v, test.Golden); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestApplyNoMatch(t *testing.T) {
	_, err := Apply([]string{"dc1"}, []string{"dc2"})
	if !service.IsErrValidate(err) {
		t.Fatalf("Apply() error %v, expected validation error", err)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); err != nil {
		t.Fatal(err)
	}
	if err := Validate([]string{"dc*", "!dc2"}); err != nil {
		t.Fatal(err)
	}
	if err := Validate([]string{"dc["}); !service.IsErrValidate(err) {
		t.Fatalf("Validate() error %v, expected validation error", err)
	}
}
