// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"errors"
	"fmt"

	"github.com/near/borsh-go"

	"github.com/ava-labs/hypercounter/consts"
)

// StateSize is the exact length of an encoded [State].
const StateSize = consts.Uint64Len

var ErrInvalidStateSize = errors.New("invalid state size")

// State is the content of a counter account.
type State struct {
	Count uint64 `json:"count"`
}

// EncodeState returns the 8 byte little-endian encoding of [s].
func EncodeState(s *State) ([]byte, error) {
	b, err := borsh.Serialize(*s)
	if err != nil {
		return nil, err
	}
	if len(b) != StateSize {
		return nil, fmt.Errorf("%w: encoded %d bytes", ErrInvalidStateSize, len(b))
	}
	return b, nil
}

// DecodeState parses the content of a counter account. The input must be
// exactly [StateSize] bytes.
func DecodeState(b []byte) (*State, error) {
	if len(b) != StateSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidStateSize, StateSize, len(b))
	}
	var s State
	if err := borsh.Deserialize(&s, b); err != nil {
		return nil, err
	}
	return &s, nil
}
