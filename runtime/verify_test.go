// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/program"
)

func TestVerifyAccount(t *testing.T) {
	var (
		owner = testProgramID("owner")
		other = testProgramID("other")
	)
	tests := []struct {
		name   string
		pre    program.AccountInfo
		modify func(*program.AccountInfo)
		err    error
	}{
		{
			name:   "unchanged readonly",
			pre:    program.AccountInfo{Owner: other, Lamports: 5, Data: []byte{1}},
			modify: func(*program.AccountInfo) {},
		},
		{
			name: "assign zeroed account",
			pre:  program.AccountInfo{Owner: owner, IsWritable: true},
			modify: func(a *program.AccountInfo) {
				a.Owner = other
				a.Data = make([]byte, 8)
			},
		},
		{
			name: "assign account with data",
			pre:  program.AccountInfo{Owner: owner, IsWritable: true},
			modify: func(a *program.AccountInfo) {
				a.Owner = other
				a.Data = []byte{1}
			},
			err: program.ErrModifiedProgramID,
		},
		{
			name:   "assign readonly account",
			pre:    program.AccountInfo{Owner: owner},
			modify: func(a *program.AccountInfo) { a.Owner = other },
			err:    program.ErrModifiedProgramID,
		},
		{
			name:   "credit external account",
			pre:    program.AccountInfo{Owner: other, IsWritable: true},
			modify: func(a *program.AccountInfo) { a.Lamports = 10 },
		},
		{
			name:   "credit readonly account",
			pre:    program.AccountInfo{Owner: owner},
			modify: func(a *program.AccountInfo) { a.Lamports = 10 },
			err:    program.ErrReadonlyLamportChange,
		},
		{
			name:   "debit owned account",
			pre:    program.AccountInfo{Owner: owner, Lamports: 10, IsWritable: true},
			modify: func(a *program.AccountInfo) { a.Lamports = 0 },
		},
		{
			name:   "write owned readonly account",
			pre:    program.AccountInfo{Owner: owner, Data: []byte{0}},
			modify: func(a *program.AccountInfo) { a.Data[0] = 1 },
			err:    program.ErrReadonlyDataModified,
		},
		{
			name:   "resize owned account",
			pre:    program.AccountInfo{Owner: owner, IsWritable: true},
			modify: func(a *program.AccountInfo) { a.Data = make([]byte, 4) },
		},
		{
			name:   "toggle executable",
			pre:    program.AccountInfo{Owner: owner, IsWritable: true},
			modify: func(a *program.AccountInfo) { a.Executable = true },
			err:    program.ErrExecutableModified,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre := tt.pre.Copy()
			post := tt.pre.Copy()
			tt.modify(post)
			err := verifyAccount(owner, pre, post)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestVerifyBalance(t *testing.T) {
	require := require.New(t)
	owner := testProgramID("owner")

	a := &program.AccountInfo{Owner: owner, Lamports: 10, IsWritable: true}
	b := &program.AccountInfo{Owner: owner, Lamports: 5, IsWritable: true}
	f := newFrame(owner, []*program.AccountInfo{a, b})

	a.Lamports -= 4
	b.Lamports += 4
	require.NoError(verify(f))

	b.Lamports++
	require.ErrorIs(verify(f), program.ErrUnbalancedInstruction)
}
