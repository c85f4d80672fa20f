// Copyright (C) 2017 ScyllaDB

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/gocqlx/v2"
	config "github.com/scylladb/scylla-repair-scheduler/pkg/config/server"
	"github.com/scylladb/scylla-repair-scheduler/pkg/fault"
	"github.com/scylladb/scylla-repair-scheduler/pkg/metrics"
	"github.com/scylladb/scylla-repair-scheduler/pkg/repairexec"
	"github.com/scylladb/scylla-repair-scheduler/pkg/repairhistory"
	"github.com/scylladb/scylla-repair-scheduler/pkg/restapi"
	"github.com/scylladb/scylla-repair-scheduler/pkg/schedule"
	"github.com/scylladb/scylla-repair-scheduler/pkg/scyllaclient"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/repair"
	"github.com/scylladb/scylla-repair-scheduler/pkg/service/tablewatch"
	"github.com/scylladb/scylla-repair-scheduler/pkg/util/timeutc"
	"golang.org/x/sync/errgroup"
)

type server struct {
	config  config.Config
	session gocqlx.Session
	logger  log.Logger

	client    *scyllaclient.Client
	faults    *fault.LogReporter
	manager   *schedule.Manager
	scheduler *repair.Scheduler
	watcher   *tablewatch.Watcher

	httpServer       *http.Server
	prometheusServer *http.Server

	cancel context.CancelFunc
	eg     *errgroup.Group

	errCh chan error
}

func newServer(c config.Config, logger log.Logger) (*server, error) {
	cluster, err := gocqlClusterConfig(c)
	if err != nil {
		return nil, err
	}
	session, err := gocqlx.WrapSession(cluster.CreateSession())
	if err != nil {
		return nil, errors.Wrapf(err, "database")
	}

	s := &server{
		config:  c,
		session: session,
		logger:  logger,

		errCh: make(chan error, 2),
	}

	if err := s.makeServices(); err != nil {
		session.Close()
		return nil, err
	}
	s.makeServers()

	return s, nil
}

func (s *server) makeServices() error {
	var err error

	s.client, err = scyllaclient.NewClient(s.config.Scylla, s.logger.Named("client"))
	if err != nil {
		return errors.Wrapf(err, "scylla client")
	}

	factory := repairhistory.NewFactory(
		s.client,
		repairhistory.NewCQLHistory(s.session),
		timeutc.Now,
		s.logger.Named("history"),
	)
	proxy := repairexec.NewProxy(s.client, s.logger.Named("repair"))
	s.faults = fault.NewLogReporter(metrics.NewFaultMetrics().MustRegister(), s.logger.Named("fault"))

	s.manager = schedule.NewManager(
		s.config.Schedule,
		timeutc.Now,
		metrics.NewSchedulerMetrics().MustRegister(),
		s.logger.Named("schedule"),
	)

	s.scheduler, err = repair.NewScheduler(
		s.config.Repair,
		factory,
		proxy,
		s.faults,
		metrics.NewTableRepairMetrics().MustRegister(),
		s.manager,
		s.logger.Named("scheduler"),
	)
	if err != nil {
		return errors.Wrapf(err, "repair scheduler")
	}

	if s.config.TableWatch.Enabled {
		s.watcher, err = tablewatch.NewWatcher(
			s.config.TableWatch,
			s.config.Repair.Default,
			repairhistory.NewSchemaLister(s.session),
			s.scheduler,
			s.logger.Named("tablewatch"),
		)
		if err != nil {
			return errors.Wrapf(err, "table watcher")
		}
	}

	return nil
}

func (s *server) makeServers() {
	h := restapi.New(restapi.Services{
		Repair:               s.scheduler,
		Faults:               s.faults,
		DefaultConfiguration: s.config.Repair.Default,
	}, s.logger.Named("http"))

	s.httpServer = &http.Server{
		Addr:              s.config.HTTP,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if s.config.Prometheus != "" {
		s.prometheusServer = &http.Server{
			Addr:              s.config.Prometheus,
			Handler:           restapi.NewPrometheus(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
}

func (s *server) startServices(ctx context.Context) error {
	s.scheduler.Open()

	ctx, s.cancel = context.WithCancel(ctx)
	s.eg, ctx = errgroup.WithContext(ctx)

	s.eg.Go(func() error {
		s.manager.Start(ctx)
		return nil
	})
	if s.watcher != nil {
		// Initial sync fails fast on schema access problems
		if err := s.watcher.Sync(ctx); err != nil {
			return errors.Wrap(err, "initial table sync")
		}
		s.eg.Go(func() error {
			s.watcher.Run(ctx)
			return nil
		})
	}

	s.logger.Info(ctx, "Services started", "tables", len(s.scheduler.Tables()))
	return nil
}

func (s *server) startServers(ctx context.Context) {
	s.logger.Info(ctx, "Starting HTTP server", "address", s.httpServer.Addr)
	go func() {
		s.errCh <- errors.Wrap(s.httpServer.ListenAndServe(), "HTTP server start")
	}()

	if s.prometheusServer != nil {
		s.logger.Info(ctx, "Starting Prometheus server", "address", s.prometheusServer.Addr)
		go func() {
			s.errCh <- errors.Wrap(s.prometheusServer.ListenAndServe(), "prometheus server start")
		}()
	}
}

func (s *server) shutdownServers(ctx context.Context, timeout time.Duration) {
	s.logger.Info(ctx, "Closing servers", "timeout", timeout)

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var eg errgroup.Group
	eg.Go(s.shutdownHTTPServer(tctx, s.httpServer))
	eg.Go(s.shutdownHTTPServer(tctx, s.prometheusServer))
	eg.Wait() // nolint: errcheck
}

func (s *server) shutdownHTTPServer(ctx context.Context, server *http.Server) func() error {
	return func() error {
		if server == nil {
			return nil
		}
		if err := server.Shutdown(ctx); err != nil {
			s.logger.Info(ctx, "Closing server failed", "address", server.Addr, "error", err)
		} else {
			s.logger.Info(ctx, "Closing server done", "address", server.Addr)
		}

		// Force close
		return server.Close()
	}
}

// close closes the scheduler and waits for its jobs to close before
// stopping the manager and the table watcher.
func (s *server) close(ctx context.Context) {
	if s.cancel != nil {
		s.scheduler.Close()
		s.scheduler.Wait()
		s.cancel()
		s.eg.Wait() // nolint: errcheck
		s.manager.Wait()
	}
	s.session.Close()
	s.logger.Info(ctx, "Services closed")
}
