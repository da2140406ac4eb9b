// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "github.com/ava-labs/avalanchego/database"

// Database holds committed account state. Every batch of transactions is
// written with a single [database.Batch].
type Database interface {
	database.KeyValueReader
	database.Batcher
}
