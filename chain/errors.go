// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	ErrNoInstructions      = errors.New("transaction has no instructions")
	ErrTooManyInstructions = errors.New("too many instructions")
	ErrTooManySigners      = errors.New("too many signers")
	ErrDuplicateSigner     = errors.New("duplicate signer")
	ErrAuthFailed          = errors.New("auth failed")
	ErrInvalidKeyValue     = errors.New("invalid key or value")
)
