// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/counter"
	"github.com/ava-labs/hypercounter/utils"
)

func newShowCmd(s *simulator) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print the account of a named key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			name, err := s.selectKey(name)
			if err != nil {
				return err
			}
			addr, err := s.keyAddress(name)
			if err != nil {
				return err
			}
			acct, err := s.rt.GetAccount(cmd.Context(), addr)
			if err != nil {
				return err
			}
			utils.Outf("{{cyan}}address:{{/}} %s\n", addr)
			utils.Outf("{{cyan}}owner:{{/}} %s\n", acct.Owner)
			utils.Outf("{{cyan}}balance:{{/}} %s\n", utils.FormatBalance(acct.Lamports))
			count, ok, err := s.readCount(cmd.Context(), addr)
			if err != nil {
				return err
			}
			if ok {
				utils.Outf("{{cyan}}count:{{/}} %d\n", count)
			}
			return nil
		},
	}
}

// readCount returns the counter stored at [addr]. ok is false when [addr]
// is not a counter account.
func (s *simulator) readCount(ctx context.Context, addr codec.Address) (uint64, bool, error) {
	acct, err := s.rt.GetAccount(ctx, addr)
	if err != nil {
		return 0, false, err
	}
	if acct.Owner != counter.ProgramID {
		return 0, false, nil
	}
	state, err := counter.DecodeState(acct.Data)
	if err != nil {
		return 0, false, err
	}
	return state.Count, true, nil
}
