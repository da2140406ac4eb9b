// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"context"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/program"
)

type logHost struct {
	logs []string
}

func (*logHost) MinimumBalance(dataLen uint64) uint64 {
	return program.DefaultRent().MinimumBalance(dataLen)
}

func (*logHost) Invoke(context.Context, *program.Instruction, []*program.AccountInfo) error {
	return program.ErrUnsupportedProgramID
}

func (h *logHost) Logf(format string, args ...any) {
	h.logs = append(h.logs, fmt.Sprintf(format, args...))
}

func newAccount(lamports uint64, signer bool) *program.AccountInfo {
	return &program.AccountInfo{
		Key:        codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID()),
		Owner:      program.SystemProgramID,
		Lamports:   lamports,
		IsSigner:   signer,
		IsWritable: true,
	}
}

func TestPackUnpack(t *testing.T) {
	require := require.New(t)
	owner := codec.CreateAddress(consts.ProgramID, ids.GenerateTestID())
	for _, ix := range []Instruction{
		&CreateAccount{Lamports: 10, Space: 8, Owner: owner},
		&Transfer{Lamports: 7},
	} {
		data, err := Pack(ix)
		require.NoError(err)
		require.Len(data, ix.Size())
		require.Equal(ix.GetTypeID(), data[0])
		parsed, err := Unpack(data)
		require.NoError(err)
		require.Equal(ix, parsed)
	}
}

func TestUnpackInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", []byte{9}},
		{"short transfer", []byte{TransferID, 1, 2}},
		{"trailing bytes", append(mustPack(&Transfer{Lamports: 1}), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unpack(tt.data)
			require.ErrorIs(t, err, program.ErrInvalidInstructionData)
		})
	}
}

func TestCreateAccount(t *testing.T) {
	owner := codec.CreateAddress(consts.ProgramID, ids.GenerateTestID())
	tests := []struct {
		name    string
		setup   func(from, to *program.AccountInfo)
		space   uint64
		amount  uint64
		wantErr error
	}{
		{
			name:   "success",
			space:  8,
			amount: 1_000,
		},
		{
			name:    "to already funded",
			setup:   func(_, to *program.AccountInfo) { to.Lamports = 1 },
			space:   8,
			amount:  1_000,
			wantErr: program.ErrAccountAlreadyInUse,
		},
		{
			name:    "to already owned",
			setup:   func(_, to *program.AccountInfo) { to.Owner = owner },
			space:   8,
			amount:  1_000,
			wantErr: program.ErrAccountAlreadyInUse,
		},
		{
			name:    "too much space",
			space:   MaxPermittedDataLength + 1,
			amount:  1_000,
			wantErr: program.ErrInvalidAccountDataLength,
		},
		{
			name:    "to not signer",
			setup:   func(_, to *program.AccountInfo) { to.IsSigner = false },
			space:   8,
			amount:  1_000,
			wantErr: program.ErrMissingRequiredSignature,
		},
		{
			name:    "from not signer",
			setup:   func(from, _ *program.AccountInfo) { from.IsSigner = false },
			space:   8,
			amount:  1_000,
			wantErr: program.ErrMissingRequiredSignature,
		},
		{
			name:    "insufficient funds",
			space:   8,
			amount:  1_000_001,
			wantErr: program.ErrInsufficientFunds,
		},
		{
			name:    "from carries data",
			setup:   func(from, _ *program.AccountInfo) { from.Data = []byte{1} },
			space:   8,
			amount:  1_000,
			wantErr: program.ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			from := newAccount(1_000_000, true)
			to := newAccount(0, true)
			if tt.setup != nil {
				tt.setup(from, to)
			}
			fromBefore, toBefore := from.Copy(), to.Copy()

			ix := NewCreateAccountInstruction(from.Key, to.Key, tt.amount, tt.space, owner)
			err := ProcessInstruction(context.Background(), &logHost{}, program.SystemProgramID, []*program.AccountInfo{from, to}, ix.Data)
			if tt.wantErr != nil {
				require.ErrorIs(err, tt.wantErr)
				require.Equal(fromBefore, from)
				require.Equal(toBefore, to)
				return
			}
			require.NoError(err)
			require.Equal(uint64(1_000_000-tt.amount), from.Lamports)
			require.Equal(tt.amount, to.Lamports)
			require.Equal(owner, to.Owner)
			require.Equal(make([]byte, tt.space), to.Data)
		})
	}
}

func TestCreateAccountNotEnoughAccounts(t *testing.T) {
	from := newAccount(10, true)
	ix := NewCreateAccountInstruction(from.Key, from.Key, 1, 1, program.SystemProgramID)
	err := ProcessInstruction(context.Background(), &logHost{}, program.SystemProgramID, []*program.AccountInfo{from}, ix.Data)
	require.ErrorIs(t, err, program.ErrNotEnoughAccountKeys)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	from := newAccount(100, true)
	to := newAccount(5, false)
	ix := NewTransferInstruction(from.Key, to.Key, 40)
	require.False(ix.Accounts[1].IsSigner)

	host := &logHost{}
	require.NoError(ProcessInstruction(context.Background(), host, program.SystemProgramID, []*program.AccountInfo{from, to}, ix.Data))
	require.Equal(uint64(60), from.Lamports)
	require.Equal(uint64(45), to.Lamports)

	ix = NewTransferInstruction(from.Key, to.Key, 61)
	err := ProcessInstruction(context.Background(), host, program.SystemProgramID, []*program.AccountInfo{from, to}, ix.Data)
	require.ErrorIs(err, program.ErrInsufficientFunds)
	require.NotEmpty(host.logs)
}
