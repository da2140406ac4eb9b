// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"fmt"

	"github.com/ava-labs/hypercounter/codec"
)

// AccountInfo is the live view of an account during an invocation. The
// runtime hands the same pointer to every program that references the
// address, so writes made by a callee are visible to its caller.
type AccountInfo struct {
	Key        codec.Address `json:"key"`
	Owner      codec.Address `json:"owner"`
	Lamports   uint64        `json:"lamports"`
	Data       []byte        `json:"data"`
	IsSigner   bool          `json:"isSigner"`
	IsWritable bool          `json:"isWritable"`
	Executable bool          `json:"executable"`
}

// Copy returns a deep copy of [a].
func (a *AccountInfo) Copy() *AccountInfo {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

func (a *AccountInfo) String() string {
	return fmt.Sprintf(
		"account(key=%s owner=%s lamports=%d len=%d signer=%t writable=%t)",
		a.Key, a.Owner, a.Lamports, len(a.Data), a.IsSigner, a.IsWritable,
	)
}

// NextAccountInfo pops the first account off [iter].
func NextAccountInfo(iter *[]*AccountInfo) (*AccountInfo, error) {
	if len(*iter) == 0 {
		return nil, ErrNotEnoughAccountKeys
	}
	next := (*iter)[0]
	*iter = (*iter)[1:]
	return next, nil
}
