// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/ava-labs/hypercounter/consts"

// BytesLen is the packed size of a length prefixed byte slice.
func BytesLen(msg []byte) int {
	return consts.IntLen + len(msg)
}
