// Copyright (C) 2017 ScyllaDB

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/scylladb/go-log"
	"github.com/scylladb/go-log/gocqllog"
	"github.com/scylladb/scylla-repair-scheduler/pkg"
	config "github.com/scylladb/scylla-repair-scheduler/pkg/config/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootArgs = struct {
	configFiles []string
	version     bool
}{}

var rootCmd = &cobra.Command{
	Use:           "scylla-repair-scheduler",
	Short:         "Scylla repair scheduler keeps tables repaired within their repair interval",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: func(cmd *cobra.Command, args []string) (runError error) {
		// Print version and return
		if rootArgs.version {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pkg.Version())
			return
		}

		// Read configuration
		c, err := config.ParseConfigFiles(rootArgs.configFiles)
		if err != nil {
			return errors.Wrapf(err, "configuration %q", rootArgs.configFiles)
		}
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "configuration %q", rootArgs.configFiles)
		}

		// Get a base context
		ctx := log.WithNewTraceID(context.Background())

		// Create logger
		logger, err := c.MakeLogger()
		if err != nil {
			return errors.Wrapf(err, "logger")
		}
		defer func() {
			if runError != nil {
				logger.Error(ctx, "Bye", "error", runError)
			} else {
				logger.Info(ctx, "Bye")
			}
			logger.Sync() // nolint
		}()

		logger.Info(ctx, "Scylla Repair Scheduler", "version", pkg.Version(), "pid", os.Getpid())
		logger.Info(ctx, "Using config", "config", obfuscateSecrets(c), "config_files", rootArgs.configFiles)

		// Redirect standard logger to the logger
		zap.RedirectStdLog(log.BaseOf(logger))

		// Set gocql logger
		gocql.Logger = gocqllog.StdLogger{
			BaseCtx: ctx,
			Logger:  logger.Named("gocql"),
		}

		// Start server
		s, err := newServer(c, logger)
		if err != nil {
			return errors.Wrapf(err, "server init, make sure cql section in config file(s) %s is set correctly",
				strings.Join(rootArgs.configFiles, ", "))
		}
		if err := s.startServices(ctx); err != nil {
			s.close(ctx)
			return errors.Wrapf(err, "server start")
		}
		s.startServers(ctx)
		defer func() {
			s.shutdownServers(ctx, 30*time.Second)
			s.close(ctx)
		}()

		// Wait signal
		signalCh := make(chan os.Signal, 1)
		signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-s.errCh:
			if err != nil {
				return err
			}
		case sig := <-signalCh:
			logger.Info(ctx, "Received signal", "signal", sig)
		}

		return nil
	},
}

func obfuscateSecrets(c config.Config) config.Config {
	cfg := c
	cfg.CQL.Password = strings.Repeat("*", len(cfg.CQL.Password))
	return cfg
}

func init() {
	f := rootCmd.Flags()
	f.StringSliceVarP(&rootArgs.configFiles, "config-file", "c",
		[]string{"/etc/scylla-repair-scheduler/scylla-repair-scheduler.yaml"}, "configuration file `path`")
	f.BoolVar(&rootArgs.version, "version", false, "print version and exit")
}
