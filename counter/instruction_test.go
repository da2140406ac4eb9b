// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/program"
)

func TestUnpack(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    Instruction
		wantErr error
	}{
		{
			name:    "empty",
			data:    nil,
			wantErr: program.ErrInvalidInstructionData,
		},
		{
			name: "initialize",
			data: []byte{0, 42, 0, 0, 0, 0, 0, 0, 0},
			want: &Initialize{InitialValue: 42},
		},
		{
			name: "initialize max",
			data: []byte{0, 255, 255, 255, 255, 255, 255, 255, 255},
			want: &Initialize{InitialValue: consts.MaxUint64},
		},
		{
			name:    "initialize short payload",
			data:    []byte{0, 1, 2, 3, 4, 5, 6, 7},
			wantErr: program.ErrInvalidInstructionData,
		},
		{
			name:    "initialize long payload",
			data:    []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			wantErr: program.ErrInvalidInstructionData,
		},
		{
			name:    "initialize no payload",
			data:    []byte{0},
			wantErr: program.ErrInvalidInstructionData,
		},
		{
			name: "increment",
			data: []byte{1},
			want: &Increment{},
		},
		{
			name: "increment trailing bytes ignored",
			data: []byte{1, 9, 9, 9},
			want: &Increment{},
		},
		{
			name:    "unknown tag",
			data:    []byte{2},
			wantErr: program.ErrInvalidInstructionData,
		},
		{
			name:    "unknown tag with payload",
			data:    []byte{255, 0, 0, 0, 0, 0, 0, 0, 0},
			wantErr: program.ErrInvalidInstructionData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ix, err := Unpack(tt.data)
			if tt.wantErr != nil {
				require.ErrorIs(err, tt.wantErr)
				require.Nil(ix)
				return
			}
			require.NoError(err)
			require.Equal(tt.want, ix)
		})
	}
}

func TestPackUnpack(t *testing.T) {
	require := require.New(t)
	for _, ix := range []Instruction{
		&Initialize{InitialValue: 0},
		&Initialize{InitialValue: 1_000_000},
		&Increment{},
	} {
		data, err := Pack(ix)
		require.NoError(err)
		require.Equal(ix.GetTypeID(), data[0])
		parsed, err := Unpack(data)
		require.NoError(err)
		require.Equal(ix, parsed)
	}
}

func TestInstructionBuilders(t *testing.T) {
	require := require.New(t)
	target := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())
	payer := codec.CreateAddress(consts.ED25519ID, ids.GenerateTestID())

	ix, err := NewInitializeInstruction(ProgramID, target, payer, 7)
	require.NoError(err)
	require.Equal(ProgramID, ix.ProgramID)
	require.Equal([]program.AccountMeta{
		{Address: target, IsSigner: true, IsWritable: true},
		{Address: payer, IsSigner: true, IsWritable: true},
		{Address: program.SystemProgramID},
	}, ix.Accounts)
	parsed, err := Unpack(ix.Data)
	require.NoError(err)
	require.Equal(&Initialize{InitialValue: 7}, parsed)

	ix, err = NewIncrementInstruction(ProgramID, target)
	require.NoError(err)
	require.Equal([]program.AccountMeta{{Address: target, IsWritable: true}}, ix.Accounts)
	require.Equal([]byte{IncrementID}, ix.Data)
}
