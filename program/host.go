// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
)

var (
	// SystemProgramID owns every account that has not been assigned to a program.
	SystemProgramID = codec.CreateAddress(consts.ProgramID, ids.Empty)

	// NativeLoaderID owns the accounts of programs built into the runtime.
	NativeLoaderID = codec.CreateAddress(consts.ProgramID, ids.ID{1})
)

// Host exposes the capabilities of the runtime to a program.
type Host interface {
	// MinimumBalance returns the rent-exempt balance for [dataLen] bytes.
	MinimumBalance(dataLen uint64) uint64
	// Invoke runs [instruction] as a cross-program call. Every account it
	// references must be present in [accounts].
	Invoke(ctx context.Context, instruction *Instruction, accounts []*AccountInfo) error
	Logf(format string, args ...any)
}

// Entrypoint is the single function the runtime calls into a program with.
type Entrypoint func(
	ctx context.Context,
	host Host,
	programID codec.Address,
	accounts []*AccountInfo,
	data []byte,
) error
