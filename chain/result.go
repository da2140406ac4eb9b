// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/hypercounter/program"
)

// Result is the outcome of executing a [Transaction]. A failed transaction
// has no effect on state.
type Result struct {
	TxID    ids.ID   `json:"txID"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Code    uint32   `json:"code"`
	Logs    []string `json:"logs"`
}

// NewResult builds the result of a transaction that returned [err].
func NewResult(txID ids.ID, err error, logs []string) *Result {
	r := &Result{
		TxID:    txID,
		Success: err == nil,
		Code:    program.Code(err),
		Logs:    logs,
	}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Err returns the sentinel error matching [r.Code], if any.
func (r *Result) Err() error {
	return program.FromCode(r.Code)
}
