// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"encoding/json"

	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/trace"
)

// MaxInvokeDepth is the default number of nested cross-program invocations.
const MaxInvokeDepth = 4

type Config struct {
	TraceConfig    trace.Config `json:"traceConfig"`
	ExecutionCores int          `json:"executionCores"`
	MaxInvokeDepth int          `json:"maxInvokeDepth"`
	Rent           program.Rent `json:"rent"`
}

func NewConfig() Config {
	return Config{
		TraceConfig:    trace.Config{Enabled: false},
		ExecutionCores: 4,
		MaxInvokeDepth: MaxInvokeDepth,
		Rent:           program.DefaultRent(),
	}
}

// LoadConfig overlays the JSON in [b] on top of [NewConfig].
func LoadConfig(b []byte) (Config, error) {
	cfg := NewConfig()
	if len(b) == 0 {
		return cfg, nil
	}
	err := json.Unmarshal(b, &cfg)
	return cfg, err
}
