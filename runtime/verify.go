// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"bytes"
	"fmt"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/program"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// verify checks every account of [f] against the snapshot taken when the
// frame started (or last crossed a cross-program call).
func verify(f *frame) error {
	var preSum, postSum uint64
	for i, post := range f.accounts {
		pre := f.pre[i]
		if err := verifyAccount(f.programID, pre, post); err != nil {
			return err
		}
		var err error
		preSum, err = smath.Add(preSum, pre.Lamports)
		if err != nil {
			return fmt.Errorf("%w: %w", program.ErrUnbalancedInstruction, err)
		}
		postSum, err = smath.Add(postSum, post.Lamports)
		if err != nil {
			return fmt.Errorf("%w: %w", program.ErrUnbalancedInstruction, err)
		}
	}
	if preSum != postSum {
		return fmt.Errorf("%w: before=%d after=%d", program.ErrUnbalancedInstruction, preSum, postSum)
	}
	return nil
}

func verifyAccount(programID codec.Address, pre, post *program.AccountInfo) error {
	var (
		ownerChanged    = pre.Owner != post.Owner
		lamportsChanged = pre.Lamports != post.Lamports
		dataChanged     = !bytes.Equal(pre.Data, post.Data)
	)
	if pre.Executable != post.Executable ||
		(pre.Executable && (ownerChanged || lamportsChanged || dataChanged)) {
		return fmt.Errorf("%w: %s", program.ErrExecutableModified, post.Key)
	}
	if ownerChanged && (pre.Owner != programID || !post.IsWritable || !isZeroed(post.Data)) {
		return fmt.Errorf("%w: %s", program.ErrModifiedProgramID, post.Key)
	}
	if lamportsChanged {
		if !post.IsWritable {
			return fmt.Errorf("%w: %s", program.ErrReadonlyLamportChange, post.Key)
		}
		if post.Lamports < pre.Lamports && pre.Owner != programID {
			return fmt.Errorf("%w: %s", program.ErrExternalAccountLamportSpend, post.Key)
		}
	}
	if dataChanged {
		if pre.Owner != programID {
			return fmt.Errorf("%w: %s", program.ErrExternalAccountDataModified, post.Key)
		}
		if !post.IsWritable {
			return fmt.Errorf("%w: %s", program.ErrReadonlyDataModified, post.Key)
		}
	}
	return nil
}

func isZeroed(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
