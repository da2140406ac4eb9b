// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"context"
	"fmt"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/program"
)

var _ program.Entrypoint = ProcessInstruction

// ProcessInstruction is the entrypoint of the system program.
func ProcessInstruction(
	_ context.Context,
	host program.Host,
	_ codec.Address,
	accounts []*program.AccountInfo,
	data []byte,
) error {
	ix, err := Unpack(data)
	if err != nil {
		return err
	}
	switch ix := ix.(type) {
	case *CreateAccount:
		return createAccount(host, accounts, ix)
	case *Transfer:
		return transfer(host, accounts, ix)
	default:
		return program.ErrInvalidInstructionData
	}
}

func createAccount(host program.Host, accounts []*program.AccountInfo, ix *CreateAccount) error {
	from, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	to, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	if to.Lamports > 0 || len(to.Data) > 0 || to.Owner != program.SystemProgramID {
		host.Logf("Create Account: account %s already in use", to.Key)
		return fmt.Errorf("%w: %s", program.ErrAccountAlreadyInUse, to.Key)
	}
	if ix.Space > MaxPermittedDataLength {
		host.Logf("Create Account: requested %d bytes, max is %d", ix.Space, MaxPermittedDataLength)
		return program.ErrInvalidAccountDataLength
	}
	if !to.IsSigner {
		host.Logf("Create Account: account %s must sign", to.Key)
		return fmt.Errorf("%w: %s", program.ErrMissingRequiredSignature, to.Key)
	}
	if err := debit(host, from, ix.Lamports); err != nil {
		return err
	}
	to.Data = make([]byte, ix.Space)
	to.Owner = ix.Owner
	return credit(to, ix.Lamports)
}

func transfer(host program.Host, accounts []*program.AccountInfo, ix *Transfer) error {
	from, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	to, err := program.NextAccountInfo(&accounts)
	if err != nil {
		return err
	}
	if err := debit(host, from, ix.Lamports); err != nil {
		return err
	}
	return credit(to, ix.Lamports)
}

func debit(host program.Host, from *program.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		host.Logf("Transfer: `from` account %s must sign", from.Key)
		return fmt.Errorf("%w: %s", program.ErrMissingRequiredSignature, from.Key)
	}
	if len(from.Data) > 0 {
		host.Logf("Transfer: `from` must not carry data")
		return program.ErrInvalidArgument
	}
	remaining, err := smath.Sub(from.Lamports, lamports)
	if err != nil {
		host.Logf("Transfer: insufficient lamports %d, need %d", from.Lamports, lamports)
		return fmt.Errorf("%w: %s has %d, need %d", program.ErrInsufficientFunds, from.Key, from.Lamports, lamports)
	}
	from.Lamports = remaining
	return nil
}

func credit(to *program.AccountInfo, lamports uint64) error {
	total, err := smath.Add(to.Lamports, lamports)
	if err != nil {
		return fmt.Errorf("%w: %w", program.ErrInvalidArgument, err)
	}
	to.Lamports = total
	return nil
}
