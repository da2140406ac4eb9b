// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrDuplicateKeyName    = errors.New("duplicate key name")
	ErrInvalidKeyName      = errors.New("invalid key name")
	ErrNamedKeyNotFound    = errors.New("named key not found")
	ErrNoKeys              = errors.New("no available keys")
	ErrInvalidChoice       = errors.New("invalid choice")
	ErrInvalidConfigFormat = errors.New("invalid config format")
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrInvalidStep         = errors.New("invalid step")
	ErrInvalidEndpoint     = errors.New("invalid endpoint")
	ErrInvalidOperator     = errors.New("invalid operator")
	ErrAssertionFailed     = errors.New("assertion failed")
	ErrTxFailed            = errors.New("tx failed")
)
