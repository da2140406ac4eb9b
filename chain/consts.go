// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "github.com/ava-labs/avalanchego/utils/units"

const (
	// NetworkSizeLimit bounds the encoded size of a transaction.
	NetworkSizeLimit = 2 * units.MiB

	MaxInstructions = 16
	MaxSigners      = 16
)
