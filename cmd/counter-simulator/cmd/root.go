// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/pebble"
	"github.com/ava-labs/hypercounter/runtime"
	"github.com/ava-labs/hypercounter/storage"
	"github.com/ava-labs/hypercounter/utils"

	hlogging "github.com/ava-labs/hypercounter/internal/logging"
	htrace "github.com/ava-labs/hypercounter/trace"
)

const (
	simulatorFolder = ".counter-simulator"
	databaseFolder  = "db"
	logsFolder      = "logs"
)

type simulator struct {
	logLevel   string
	dataDir    string
	configFile string
	cleanup    bool

	logFactory *hlogging.Factory
	log        logging.Logger
	tracer     trace.Tracer
	db         *pebble.Database
	rt         *runtime.Runtime
}

func NewRootCmd() *cobra.Command {
	s := &simulator{}
	cmd := &cobra.Command{
		Use:   "counter-simulator",
		Short: "Run counter program transactions against a local database",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.Init(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return s.Close()
		},
	}

	cobra.EnablePrefixMatching = true
	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	cmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "info", "log level")
	cmd.PersistentFlags().StringVar(&s.dataDir, "database", "", "simulator directory (defaults to ~/"+simulatorFolder+")")
	cmd.PersistentFlags().StringVar(&s.configFile, "config", "", "runtime config file (JSON)")
	cmd.PersistentFlags().BoolVar(&s.cleanup, "cleanup", false, "remove simulator directory on exit")

	cmd.AddCommand(
		newKeyCmd(s),
		newGenesisCmd(s),
		newRunCmd(s),
		newShowCmd(s),
	)
	return cmd
}

// Init opens the simulator database and runtime.
func (s *simulator) Init(ctx context.Context) error {
	if s.dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		s.dataDir = filepath.Join(homeDir, simulatorFolder)
	}

	level, err := logging.ToLevel(s.logLevel)
	if err != nil {
		return err
	}
	logDir, err := utils.InitSubDirectory(s.dataDir, logsFolder)
	if err != nil {
		return err
	}
	logConfig := hlogging.NewDefaultConfig(logDir)
	logConfig.Level = level
	logConfig.DisableConsole = true
	s.logFactory = hlogging.NewFactory(logConfig)
	s.log, err = s.logFactory.Make("simulator")
	if err != nil {
		s.logFactory.Close()
		return err
	}

	config := runtime.NewConfig()
	if len(s.configFile) > 0 {
		b, err := os.ReadFile(s.configFile)
		if err != nil {
			return err
		}
		config, err = runtime.LoadConfig(b)
		if err != nil {
			return err
		}
	}
	g, err := s.loadGenesis()
	if err != nil {
		return err
	}
	config.Rent = g.Rent

	s.tracer, err = htrace.New(&config.TraceConfig)
	if err != nil {
		return err
	}
	db, registry, err := storage.Open(s.dataDir, databaseFolder, pebble.NewDefaultConfig())
	if err != nil {
		return err
	}
	s.db = db
	s.rt, err = runtime.New(config, s.log, s.tracer, s.db, registry)
	if err != nil {
		return err
	}
	if err := s.rt.Register(counter.ProgramID, counter.ProcessInstruction); err != nil {
		return err
	}

	s.log.Info("simulator initialized",
		zap.String("dataDir", s.dataDir),
		zap.String("log-level", s.logLevel),
		zap.Int("executionCores", config.ExecutionCores),
	)
	return ctx.Err()
}

// Close releases everything opened by [Init].
func (s *simulator) Close() error {
	var errs []error
	if s.db != nil {
		errs = append(errs, s.db.Close())
		s.db = nil
	}
	if s.tracer != nil {
		errs = append(errs, s.tracer.Close())
		s.tracer = nil
	}
	if s.logFactory != nil {
		s.logFactory.Close()
		s.logFactory = nil
	}
	if s.cleanup {
		if err := os.RemoveAll(s.dataDir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove simulator directory: %w", err))
		}
	}
	return errors.Join(errs...)
}
