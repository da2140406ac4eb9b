// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE} -destination=mock_host.go github.com/ava-labs/hypercounter/program Host
