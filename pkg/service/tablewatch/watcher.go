// Copyright (C) 2017 ScyllaDB

package tablewatch

import (
	"context"
	"time"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-set/strset"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/inexlist"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/uuid"
	"go.uber.org/multierr"
)

// systemKeyspaces are never repaired by the watcher.
var systemKeyspaces = strset.New(
	"system",
	"system_auth",
	"system_auth_v2",
	"system_distributed",
	"system_distributed_everywhere",
	"system_replicated_keys",
	"system_schema",
	"system_traces",
	"system_views",
	"system_virtual_schema",
)

// TableLister lists tables of the cluster.
type TableLister interface {
	ListTables(ctx context.Context) ([]repair.TableReference, error)
}

// Scheduler is the part of repair.Scheduler the watcher drives.
type Scheduler interface {
	PutConfiguration(ctx context.Context, table repair.TableReference, c repair.Configuration) error
	RemoveConfiguration(ctx context.Context, table repair.TableReference)
	Tables() []repair.TableReference
}

type override struct {
	g    glob.Glob
	conf repair.Configuration
}

// Watcher keeps repair configurations of the scheduler in sync with the
// schema. Tables are put on first sight and whenever their resolved
// configuration changes, configurations set by other means are kept
// until the table is dropped.
type Watcher struct {
	config    Config
	def       repair.Configuration
	filter    inexlist.InExList
	overrides []override
	lister    TableLister
	scheduler Scheduler
	logger    log.Logger

	managed map[uuid.UUID]repair.Configuration
}

func NewWatcher(config Config, def repair.Configuration, lister TableLister, scheduler Scheduler, logger log.Logger) (*Watcher, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	if err := def.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid default configuration")
	}
	if lister == nil || scheduler == nil {
		return nil, errors.New("missing table lister or scheduler")
	}

	filter, err := inexlist.ParseInExList(config.Tables)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:    config,
		def:       def,
		filter:    filter,
		lister:    lister,
		scheduler: scheduler,
		logger:    logger,
		managed:   make(map[uuid.UUID]repair.Configuration),
	}
	for i, o := range config.Overrides {
		c := withDefaults(o.Configuration, def)
		if err := c.Validate(); err != nil {
			return nil, errors.Wrapf(err, "invalid overrides[%d] configuration", i)
		}
		w.overrides = append(w.overrides, override{
			g:    glob.MustCompile(o.Tables),
			conf: c,
		})
	}
	return w, nil
}

// Configuration returns the configuration a table is repaired with, the
// first matching override wins.
func (w *Watcher) Configuration(table repair.TableReference) repair.Configuration {
	name := table.Keyspace + "." + table.Table
	for _, o := range w.overrides {
		if o.g.Match(name) {
			return o.conf
		}
	}
	return w.def
}

func (w *Watcher) included(table repair.TableReference) bool {
	return !systemKeyspaces.Has(table.Keyspace) && w.filter.Check(table.Keyspace+"."+table.Table)
}

// Sync lists tables once and updates the scheduler.
// It's not safe for concurrent use.
func (w *Watcher) Sync(ctx context.Context) error {
	tables, err := w.lister.ListTables(ctx)
	if err != nil {
		return errors.Wrap(err, "list tables")
	}

	present := make(map[uuid.UUID]struct{}, len(tables))
	var errs error
	for _, t := range tables {
		present[t.ID] = struct{}{}

		if !w.included(t) {
			if _, ok := w.managed[t.ID]; ok {
				w.logger.Info(ctx, "Table excluded", "keyspace", t.Keyspace, "table", t.Table)
				w.scheduler.RemoveConfiguration(ctx, t)
				delete(w.managed, t.ID)
			}
			continue
		}

		c := w.Configuration(t)
		if prev, ok := w.managed[t.ID]; ok && prev.Equal(c) {
			continue
		}
		if err := w.scheduler.PutConfiguration(ctx, t, c); err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "put %s", t))
			continue
		}
		w.logger.Info(ctx, "Table configured", "keyspace", t.Keyspace, "table", t.Table, "interval", c.Interval)
		w.managed[t.ID] = c
	}

	for _, t := range w.scheduler.Tables() {
		if _, ok := present[t.ID]; ok {
			continue
		}
		w.logger.Info(ctx, "Table dropped", "keyspace", t.Keyspace, "table", t.Table)
		w.scheduler.RemoveConfiguration(ctx, t)
		delete(w.managed, t.ID)
	}

	return errs
}

// Run syncs tables every refresh interval until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	t := time.NewTicker(w.config.RefreshInterval)
	defer t.Stop()

	for {
		if err := w.Sync(ctx); err != nil {
			w.logger.Error(ctx, "Table sync failed", "error", err)
		}

		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
