// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/genesis"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/utils"
)

const genesisFile = "genesis.json"

func newGenesisCmd(s *simulator) *cobra.Command {
	return &cobra.Command{
		Use:   "genesis [name] [balance]",
		Short: "Fund a named key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := utils.ParseBalance(args[1])
			if err != nil {
				return err
			}
			if err := s.fund(cmd.Context(), args[0], balance); err != nil {
				return err
			}
			utils.Outf("{{green}}funded:{{/}} %s {{yellow}}amount:{{/}} %s\n", args[0], utils.FormatBalance(balance))
			return nil
		},
	}
}

func (s *simulator) genesisPath() string {
	return filepath.Join(s.dataDir, genesisFile)
}

// loadGenesis returns the allocations applied so far.
func (s *simulator) loadGenesis() (*genesis.Genesis, error) {
	b, err := os.ReadFile(s.genesisPath())
	if errors.Is(err, fs.ErrNotExist) {
		return genesis.NewDefaultGenesis(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return genesis.Load(b)
}

// fund credits [balance] to the key [name] and records the allocation.
func (s *simulator) fund(ctx context.Context, name string, balance uint64) error {
	addr, err := s.keyAddress(name)
	if err != nil {
		return err
	}
	g, err := s.loadGenesis()
	if err != nil {
		return err
	}

	alloc := &genesis.CustomAllocation{Address: addr, Balance: balance}
	update := &genesis.Genesis{
		CustomAllocation: []*genesis.CustomAllocation{alloc},
		Rent:             g.Rent,
	}
	if err := s.rt.Mutate(ctx, update.StateKeys(), func(ctx context.Context, mu state.Mutable) error {
		return update.InitializeState(ctx, s.tracer, mu)
	}); err != nil {
		return err
	}

	g.CustomAllocation = append(g.CustomAllocation, alloc)
	b, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.SaveBytes(s.genesisPath(), b); err != nil {
		return err
	}
	s.log.Info("funded key",
		zap.String("name", name),
		zap.Stringer("address", addr),
		zap.Uint64("balance", balance),
	)
	return nil
}
