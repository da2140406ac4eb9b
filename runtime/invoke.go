// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/set"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercounter/chain"
	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/storage"
)

var _ program.Host = (*invocation)(nil)

// frame is a single program activation on the invoke stack.
type frame struct {
	programID codec.Address
	accounts  []*program.AccountInfo
	pre       []*program.AccountInfo
}

func newFrame(programID codec.Address, accounts []*program.AccountInfo) *frame {
	f := &frame{programID: programID, accounts: accounts}
	f.snapshot()
	return f
}

func (f *frame) snapshot() {
	f.pre = make([]*program.AccountInfo, len(f.accounts))
	for i, acct := range f.accounts {
		f.pre[i] = acct.Copy()
	}
}

func (f *frame) has(addr codec.Address) bool {
	for _, acct := range f.accounts {
		if acct.Key == addr {
			return true
		}
	}
	return false
}

// invocation is the state of a single transaction while it executes.
type invocation struct {
	r        *Runtime
	accounts map[codec.Address]*program.AccountInfo
	stack    []*frame
	logs     []string
}

func (inv *invocation) MinimumBalance(dataLen uint64) uint64 {
	return inv.r.config.Rent.MinimumBalance(dataLen)
}

func (inv *invocation) Logf(format string, args ...any) {
	inv.logf("Program log: "+format, args...)
}

func (inv *invocation) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	inv.logs = append(inv.logs, msg)
	inv.r.log.Debug("program output", zap.String("msg", msg))
}

// Invoke runs [ix] on behalf of the program at the top of the stack. The
// callee may not receive privileges the caller does not hold.
func (inv *invocation) Invoke(ctx context.Context, ix *program.Instruction, accounts []*program.AccountInfo) error {
	if len(inv.stack) == 0 {
		return program.ErrUnsupportedProgramID
	}
	caller := inv.stack[len(inv.stack)-1]

	passed := set.NewSet[codec.Address](len(accounts))
	for _, acct := range accounts {
		passed.Add(acct.Key)
	}
	if !passed.Contains(ix.ProgramID) || !caller.has(ix.ProgramID) {
		return fmt.Errorf("%w: program %s", program.ErrMissingAccount, ix.ProgramID)
	}
	for _, meta := range ix.Accounts {
		if !passed.Contains(meta.Address) || !caller.has(meta.Address) {
			return fmt.Errorf("%w: %s", program.ErrMissingAccount, meta.Address)
		}
		acct := inv.accounts[meta.Address]
		if meta.IsSigner && !acct.IsSigner {
			return fmt.Errorf("%w: %s is not a signer", program.ErrPrivilegeEscalation, meta.Address)
		}
		if meta.IsWritable && !acct.IsWritable {
			return fmt.Errorf("%w: %s is not writable", program.ErrPrivilegeEscalation, meta.Address)
		}
	}

	if err := verify(caller); err != nil {
		return err
	}
	caller.snapshot()
	if err := inv.process(ctx, ix.ProgramID, ix.Accounts, ix.Data); err != nil {
		return err
	}
	caller.snapshot()
	return nil
}

// process pushes a frame for [programID] and runs it against the accounts
// named by [metas].
func (inv *invocation) process(
	ctx context.Context,
	programID codec.Address,
	metas []program.AccountMeta,
	data []byte,
) error {
	entry, ok := inv.r.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", program.ErrUnsupportedProgramID, programID)
	}
	if len(inv.stack) >= inv.r.config.MaxInvokeDepth {
		return fmt.Errorf("%w: depth %d", program.ErrCallDepth, len(inv.stack)+1)
	}
	// Direct self-recursion is allowed.
	if n := len(inv.stack); n > 0 && inv.stack[n-1].programID != programID {
		for _, f := range inv.stack {
			if f.programID == programID {
				return fmt.Errorf("%w: %s", program.ErrReentrancyNotAllowed, programID)
			}
		}
	}

	ordered, unique, err := inv.resolve(metas)
	if err != nil {
		return err
	}
	restore := setPrivileges(unique, metas)
	defer restore()

	f := newFrame(programID, unique)
	inv.stack = append(inv.stack, f)
	defer func() { inv.stack = inv.stack[:len(inv.stack)-1] }()

	inv.r.metrics.invocations.Inc()
	inv.logf("Program %s invoke [%d]", programID, len(inv.stack))
	if err := entry(ctx, inv, programID, ordered, data); err != nil {
		inv.logf("Program %s failed: %v", programID, err)
		return err
	}
	if err := verify(f); err != nil {
		inv.logf("Program %s failed: %v", programID, err)
		return err
	}
	inv.logf("Program %s success", programID)
	return nil
}

// resolve maps [metas] to the accounts loaded by the transaction. [ordered]
// follows [metas] (duplicates included) and [unique] holds each account once.
func (inv *invocation) resolve(metas []program.AccountMeta) ([]*program.AccountInfo, []*program.AccountInfo, error) {
	var (
		ordered = make([]*program.AccountInfo, 0, len(metas))
		unique  = make([]*program.AccountInfo, 0, len(metas))
		seen    = set.NewSet[codec.Address](len(metas))
	)
	for _, meta := range metas {
		acct, ok := inv.accounts[meta.Address]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", program.ErrMissingAccount, meta.Address)
		}
		ordered = append(ordered, acct)
		if !seen.Contains(meta.Address) {
			seen.Add(meta.Address)
			unique = append(unique, acct)
		}
	}
	return ordered, unique, nil
}

type privileges struct {
	signer   bool
	writable bool
}

// setPrivileges applies the union of [metas] to [accounts] and returns a
// function that restores the previous privileges.
func setPrivileges(accounts []*program.AccountInfo, metas []program.AccountMeta) func() {
	saved := make([]privileges, len(accounts))
	for i, acct := range accounts {
		saved[i] = privileges{signer: acct.IsSigner, writable: acct.IsWritable}
		acct.IsSigner = false
		acct.IsWritable = false
	}
	for _, meta := range metas {
		for _, acct := range accounts {
			if acct.Key != meta.Address {
				continue
			}
			acct.IsSigner = acct.IsSigner || meta.IsSigner
			acct.IsWritable = acct.IsWritable || meta.IsWritable
		}
	}
	return func() {
		for i, acct := range accounts {
			acct.IsSigner = saved[i].signer
			acct.IsWritable = saved[i].writable
		}
	}
}

// executeTx runs every instruction of [tx] against [tsv]. Program failures
// are returned in the [chain.Result] and roll back every change made by
// [tx]. A non-nil error means state could not be accessed.
func (r *Runtime) executeTx(ctx context.Context, tsv tstateView, tx *chain.Transaction) (*chain.Result, error) {
	r.metrics.txsExecuted.Inc()

	signers, err := tx.Signers()
	if err != nil {
		r.metrics.txsFailed.Inc()
		return chain.NewResult(tx.ID(), fmt.Errorf("%w: %w", program.ErrMissingRequiredSignature, err), nil), nil
	}

	var (
		metas    = tx.Accounts()
		accounts = make(map[codec.Address]*program.AccountInfo, len(metas))
		loaded   = make(map[codec.Address]*program.AccountInfo, len(metas))
	)
	for _, meta := range metas {
		if acct, ok := r.programAccount(meta.Address); ok {
			accounts[meta.Address] = acct
			continue
		}
		acct, err := storage.GetAccount(ctx, tsv, meta.Address)
		if err != nil {
			return nil, err
		}
		accounts[meta.Address] = acct
		loaded[meta.Address] = acct.Copy()
	}
	inv := &invocation{r: r, accounts: accounts}
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !signers.Contains(meta.Address) {
				err := fmt.Errorf("%w: %s", program.ErrMissingRequiredSignature, meta.Address)
				return r.fail(tx, err, inv.logs), nil
			}
		}
		if err := inv.process(ctx, ix.ProgramID, ix.Accounts, ix.Data); err != nil {
			return r.fail(tx, err, inv.logs), nil
		}
	}

	start := tsv.OpIndex()
	for _, meta := range metas {
		if !meta.IsWritable {
			continue
		}
		acct := accounts[meta.Address]
		pre, ok := loaded[meta.Address]
		if !ok || acct.Executable || equalAccounts(pre, acct) {
			continue
		}
		if err := storage.SetAccount(ctx, tsv, acct); err != nil {
			tsv.Rollback(ctx, start)
			return r.fail(tx, err, inv.logs), nil
		}
	}
	return chain.NewResult(tx.ID(), nil, inv.logs), nil
}

func (r *Runtime) fail(tx *chain.Transaction, err error, logs []string) *chain.Result {
	r.metrics.txsFailed.Inc()
	r.log.Debug("transaction failed",
		zap.Stringer("txID", tx.ID()),
		zap.Error(err),
	)
	return chain.NewResult(tx.ID(), err, logs)
}

func equalAccounts(a, b *program.AccountInfo) bool {
	return a.Owner == b.Owner &&
		a.Lamports == b.Lamports &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// tstateView is the subset of a transaction view [executeTx] needs.
type tstateView interface {
	state.Mutable
	OpIndex() int
	Rollback(ctx context.Context, restorePoint int)
}
