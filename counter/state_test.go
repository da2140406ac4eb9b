// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/hypercounter/consts"
)

func TestStateRoundTrip(t *testing.T) {
	require := require.New(t)

	values := []uint64{0, 1, 42, 1 << 32, consts.MaxUint64 - 1, consts.MaxUint64}
	r := rand.New(rand.NewSource(1)) //nolint:gosec
	for i := 0; i < 64; i++ {
		values = append(values, r.Uint64())
	}
	for _, v := range values {
		b, err := EncodeState(&State{Count: v})
		require.NoError(err)
		require.Len(b, StateSize)
		require.Equal(v, binary.LittleEndian.Uint64(b))

		s, err := DecodeState(b)
		require.NoError(err)
		require.Equal(v, s.Count)
	}
}

func TestDecodeStateInvalidSize(t *testing.T) {
	for _, size := range []int{0, 1, StateSize - 1, StateSize + 1, 64} {
		_, err := DecodeState(make([]byte, size))
		require.ErrorIs(t, err, ErrInvalidStateSize, "size %d", size)
	}
}
