// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/system"
)

// recurse invokes itself data[0] more times.
func recurse(ctx context.Context, host program.Host, id codec.Address, accounts []*program.AccountInfo, data []byte) error {
	if len(data) == 0 || data[0] == 0 {
		return nil
	}
	return host.Invoke(ctx, &program.Instruction{
		ProgramID: id,
		Accounts:  []program.AccountMeta{program.NewReadonlyAccountMeta(id, false)},
		Data:      []byte{data[0] - 1},
	}, accounts)
}

func TestInvokeDepth(t *testing.T) {
	tests := []struct {
		name  string
		calls byte
		err   error
	}{
		{
			name:  "no recursion",
			calls: 0,
		},
		{
			name:  "self recursion",
			calls: 2,
		},
		{
			name:  "max depth",
			calls: MaxInvokeDepth - 1,
		},
		{
			name:  "too deep",
			calls: MaxInvokeDepth,
			err:   program.ErrCallDepth,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			r := newTestRuntime(t)
			id := testProgramID("recurse")
			require.NoError(r.Register(id, recurse))

			payerKey, _ := newKey(t)
			ix := &program.Instruction{
				ProgramID: id,
				Accounts:  []program.AccountMeta{program.NewReadonlyAccountMeta(id, false)},
				Data:      []byte{tt.calls},
			}
			result, err := r.Execute(context.Background(), signTx(t, []*program.Instruction{ix}, payerKey))
			require.NoError(err)
			if tt.err == nil {
				require.True(result.Success, result.Error)
				return
			}
			require.ErrorIs(result.Err(), tt.err)
		})
	}
}

func TestInvokeReentrancy(t *testing.T) {
	require := require.New(t)
	r := newTestRuntime(t)

	var (
		a     = testProgramID("a")
		b     = testProgramID("b")
		metas = []program.AccountMeta{
			program.NewReadonlyAccountMeta(a, false),
			program.NewReadonlyAccountMeta(b, false),
		}
	)
	// a calls b, b calls back into a.
	require.NoError(r.Register(a, func(ctx context.Context, host program.Host, _ codec.Address, accounts []*program.AccountInfo, data []byte) error {
		if len(data) > 0 {
			return nil
		}
		return host.Invoke(ctx, &program.Instruction{ProgramID: b, Accounts: metas}, accounts)
	}))
	require.NoError(r.Register(b, func(ctx context.Context, host program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
		return host.Invoke(ctx, &program.Instruction{ProgramID: a, Accounts: metas, Data: []byte{1}}, accounts)
	}))

	payerKey, _ := newKey(t)
	ix := &program.Instruction{ProgramID: a, Accounts: metas}
	result, err := r.Execute(context.Background(), signTx(t, []*program.Instruction{ix}, payerKey))
	require.NoError(err)
	require.ErrorIs(result.Err(), program.ErrReentrancyNotAllowed)
}

func TestInvokePrivilegeEscalation(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	r := newTestRuntime(t)

	id := testProgramID("escalate")
	require.NoError(r.Register(id, func(ctx context.Context, host program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
		return host.Invoke(ctx, system.NewTransferInstruction(accounts[0].Key, accounts[1].Key, 1), accounts)
	}))

	_, victim := newKey(t)
	fund(t, r, victim, 100)
	payerKey, payer := newKey(t)
	ix := &program.Instruction{
		ProgramID: id,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(victim, false),
			program.NewAccountMeta(payer, true),
			program.NewReadonlyAccountMeta(program.SystemProgramID, false),
		},
	}
	result, err := r.Execute(ctx, signTx(t, []*program.Instruction{ix}, payerKey))
	require.NoError(err)
	require.ErrorIs(result.Err(), program.ErrPrivilegeEscalation)

	acct, err := r.GetAccount(ctx, victim)
	require.NoError(err)
	require.Equal(uint64(100), acct.Lamports)
}

func TestInvokeMissingAccount(t *testing.T) {
	require := require.New(t)
	r := newTestRuntime(t)

	id := testProgramID("forgetful")
	require.NoError(r.Register(id, func(ctx context.Context, host program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
		// The system program account is not passed along.
		return host.Invoke(ctx, system.NewTransferInstruction(accounts[0].Key, accounts[0].Key, 0), accounts[:1])
	}))

	payerKey, payer := newKey(t)
	ix := &program.Instruction{
		ProgramID: id,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(payer, true),
			program.NewReadonlyAccountMeta(program.SystemProgramID, false),
		},
	}
	result, err := r.Execute(context.Background(), signTx(t, []*program.Instruction{ix}, payerKey))
	require.NoError(err)
	require.ErrorIs(result.Err(), program.ErrMissingAccount)
}

func TestInvokeSignedTransfer(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	r := newTestRuntime(t)

	id := testProgramID("forward")
	require.NoError(r.Register(id, func(ctx context.Context, host program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
		if err := host.Invoke(ctx, system.NewTransferInstruction(accounts[0].Key, accounts[1].Key, 40), accounts); err != nil {
			return err
		}
		host.Logf("forwarded %d", 40)
		return nil
	}))

	fromKey, from := newKey(t)
	_, to := newKey(t)
	fund(t, r, from, 100)
	ix := &program.Instruction{
		ProgramID: id,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(from, true),
			program.NewAccountMeta(to, false),
			program.NewReadonlyAccountMeta(program.SystemProgramID, false),
		},
	}
	result, err := r.Execute(ctx, signTx(t, []*program.Instruction{ix}, fromKey))
	require.NoError(err)
	require.True(result.Success, result.Error)
	require.Contains(result.Logs, "Program log: forwarded 40")

	acct, err := r.GetAccount(ctx, to)
	require.NoError(err)
	require.Equal(uint64(40), acct.Lamports)
	acct, err = r.GetAccount(ctx, from)
	require.NoError(err)
	require.Equal(uint64(60), acct.Lamports)
}

func TestInvariantViolations(t *testing.T) {
	tests := []struct {
		name  string
		entry program.Entrypoint
		err   error
	}{
		{
			name: "spend external lamports",
			entry: func(_ context.Context, _ program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
				accounts[0].Lamports--
				accounts[1].Lamports++
				return nil
			},
			err: program.ErrExternalAccountLamportSpend,
		},
		{
			name: "mint lamports",
			entry: func(_ context.Context, _ program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
				accounts[1].Lamports += 10
				return nil
			},
			err: program.ErrUnbalancedInstruction,
		},
		{
			name: "write external data",
			entry: func(_ context.Context, _ program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
				accounts[1].Data = []byte{1}
				return nil
			},
			err: program.ErrExternalAccountDataModified,
		},
		{
			name: "steal ownership",
			entry: func(_ context.Context, _ program.Host, id codec.Address, accounts []*program.AccountInfo, _ []byte) error {
				accounts[1].Owner = id
				return nil
			},
			err: program.ErrModifiedProgramID,
		},
		{
			name: "modify program account",
			entry: func(_ context.Context, _ program.Host, _ codec.Address, accounts []*program.AccountInfo, _ []byte) error {
				accounts[2].Lamports++
				return nil
			},
			err: program.ErrExecutableModified,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			ctx := context.Background()
			r := newTestRuntime(t)
			id := testProgramID("rogue")
			require.NoError(r.Register(id, tt.entry))

			payerKey, payer := newKey(t)
			_, other := newKey(t)
			fund(t, r, payer, 100)
			ix := &program.Instruction{
				ProgramID: id,
				Accounts: []program.AccountMeta{
					program.NewAccountMeta(payer, true),
					program.NewAccountMeta(other, false),
					program.NewReadonlyAccountMeta(program.SystemProgramID, false),
				},
			}
			result, err := r.Execute(ctx, signTx(t, []*program.Instruction{ix}, payerKey))
			require.NoError(err)
			require.False(result.Success)
			require.ErrorIs(result.Err(), tt.err)

			acct, err := r.GetAccount(ctx, payer)
			require.NoError(err)
			require.Equal(uint64(100), acct.Lamports)
			acct, err = r.GetAccount(ctx, other)
			require.NoError(err)
			require.Equal(program.SystemProgramID, acct.Owner)
			require.Zero(acct.Lamports)
		})
	}
}
