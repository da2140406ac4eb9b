// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/system"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// ProgramID is the address the counter program is deployed at.
var ProgramID = codec.CreateAddress(consts.ProgramID, ids.ID(hashing.ComputeHash256Array([]byte("counter"))))

var _ program.Entrypoint = ProcessInstruction

// ProcessInstruction decodes [data] and applies the transition to [accounts].
// A failed transition leaves the counter account untouched.
func ProcessInstruction(
	ctx context.Context,
	host program.Host,
	programID codec.Address,
	accounts []*program.AccountInfo,
	data []byte,
) error {
	ix, err := Unpack(data)
	if err != nil {
		return err
	}
	switch ix := ix.(type) {
	case *Initialize:
		return initialize(ctx, host, programID, accounts, ix.InitialValue)
	case *Increment:
		return increment(host, programID, accounts)
	default:
		return program.ErrInvalidInstructionData
	}
}

func initialize(
	ctx context.Context,
	host program.Host,
	programID codec.Address,
	accounts []*program.AccountInfo,
	initialValue uint64,
) error {
	target, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	payer, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	systemProgram, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}

	lamports := host.MinimumBalance(StateSize)
	create := system.NewCreateAccountInstruction(payer.Key, target.Key, lamports, StateSize, programID)
	if err := host.Invoke(ctx, create, []*program.AccountInfo{payer, target, systemProgram}); err != nil {
		return err
	}

	b, err := EncodeState(&State{Count: initialValue})
	if err != nil {
		return err
	}
	if len(target.Data) < len(b) {
		return fmt.Errorf("%w: have %d bytes", program.ErrAccountDataTooSmall, len(target.Data))
	}
	copy(target.Data, b)
	host.Logf("Counter initialized with value: %d", initialValue)
	return nil
}

func increment(host program.Host, programID codec.Address, accounts []*program.AccountInfo) error {
	target, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	if target.Owner != programID {
		return fmt.Errorf("%w: %s is owned by %s", program.ErrIncorrectProgramID, target.Key, target.Owner)
	}
	s, err := DecodeState(target.Data)
	if err != nil {
		return fmt.Errorf("%w: %w", program.ErrInvalidAccountData, err)
	}
	next, err := smath.Add(s.Count, 1)
	if err != nil {
		return fmt.Errorf("%w: %w", program.ErrInvalidAccountData, err)
	}
	b, err := EncodeState(&State{Count: next})
	if err != nil {
		return err
	}
	copy(target.Data, b)
	host.Logf("Counter incremented to: %d", next)
	return nil
}
