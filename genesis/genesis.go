// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ava-labs/avalanchego/trace"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/storage"

	safemath "github.com/ava-labs/avalanchego/utils/math"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type CustomAllocation struct {
	Address codec.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
	Rent             program.Rent        `json:"rent"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{
		CustomAllocation: customAllocations,
		Rent:             program.DefaultRent(),
	}
}

// Load parses a JSON genesis. Fields that are omitted keep their defaults.
func Load(b []byte) (*Genesis, error) {
	g := NewDefaultGenesis(nil)
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	return g, nil
}

// StateKeys returns the keys [InitializeState] writes.
func (g *Genesis) StateKeys() state.Keys {
	keys := make(state.Keys, len(g.CustomAllocation))
	for _, alloc := range g.CustomAllocation {
		keys.Add(string(storage.AccountKey(alloc.Address)), state.All)
	}
	return keys
}

// InitializeState credits every allocation. Allocated accounts are owned by
// the system program.
func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, mu state.Mutable) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState", oteltrace.WithAttributes(
		attribute.Int("allocations", len(g.CustomAllocation)),
	))
	defer span.End()

	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		var err error
		supply, err = safemath.Add(supply, alloc.Balance)
		if err != nil {
			return err
		}
		if _, err := storage.AddBalance(ctx, mu, alloc.Address, alloc.Balance); err != nil {
			return fmt.Errorf("%w: addr=%s, bal=%d", err, alloc.Address, alloc.Balance)
		}
	}
	span.SetAttributes(attribute.String("supply", strconv.FormatUint(supply, 10)))
	return nil
}
