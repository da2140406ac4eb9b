// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestPackerRoundTrip(t *testing.T) {
	require := require.New(t)
	addr := CreateAddress(1, ids.GenerateTestID())

	wp := NewWriter(64, 1024)
	wp.PackByte(7)
	wp.PackBool(true)
	wp.PackUint64(42)
	wp.PackAddress(addr)
	wp.PackBytes([]byte("hello"))
	require.NoError(wp.Err())

	rp := NewReader(wp.Bytes(), 1024)
	require.Equal(byte(7), rp.UnpackByte())
	require.True(rp.UnpackBool())
	require.Equal(uint64(42), rp.UnpackUint64(true))
	var parsed Address
	rp.UnpackAddress(&parsed)
	require.Equal(addr, parsed)
	var b []byte
	rp.UnpackBytes(16, true, &b)
	require.Equal([]byte("hello"), b)
	require.True(rp.Empty())
	require.NoError(rp.Err())
}

func TestPackerRequired(t *testing.T) {
	require := require.New(t)
	wp := NewWriter(8, 8)
	wp.PackUint64(0)

	rp := NewReader(wp.Bytes(), 8)
	rp.UnpackUint64(true)
	require.ErrorIs(rp.Err(), ErrFieldNotPopulated)
}

func TestPackerLimits(t *testing.T) {
	require := require.New(t)
	wp := NewWriter(0, 4)
	wp.PackUint64(1)
	require.Error(wp.Err())

	wp = NewWriter(16, 64)
	wp.PackBytes([]byte("too long"))
	rp := NewReader(wp.Bytes(), 64)
	var b []byte
	rp.UnpackBytes(2, false, &b)
	require.Error(rp.Err())
}
