// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadBytes(t *testing.T) {
	require := require.New(t)
	filename := filepath.Join(t.TempDir(), "key")

	id := ids.GenerateTestID()
	require.NoError(SaveBytes(filename, id[:]))
	require.FileExists(filename)

	b, err := LoadBytes(filename, ids.IDLen)
	require.NoError(err)
	require.Equal(id[:], b)

	_, err = LoadBytes(filename, ids.IDLen+1)
	require.ErrorIs(err, ErrInvalidFileSize)

	b, err = LoadBytes(filename, -1)
	require.NoError(err)
	require.Len(b, ids.IDLen)
}

func TestLoadBytesMissingFile(t *testing.T) {
	_, err := LoadBytes(filepath.Join(t.TempDir(), "missing"), -1)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitSubDirectory(t *testing.T) {
	require := require.New(t)
	p, err := InitSubDirectory(t.TempDir(), "state")
	require.NoError(err)
	require.DirExists(p)
}

func TestFormatAndParseBalance(t *testing.T) {
	require := require.New(t)

	testCases := []struct {
		input    uint64
		expected string
	}{
		{1000000000, "1.000000000"},
		{123456789, "0.123456789"},
		{1234567890, "1.234567890"},
		{946560, "0.000946560"},
		{0, "0.000000000"},
	}

	for _, tc := range testCases {
		require.Equal(tc.expected, FormatBalance(tc.input))

		parsed, err := ParseBalance(tc.expected)
		require.NoError(err)
		require.Equal(tc.input, parsed)
	}
}
