// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/keys"
	"github.com/ava-labs/hypercounter/pebble"
	"github.com/ava-labs/hypercounter/program"
	"github.com/ava-labs/hypercounter/state"
	"github.com/ava-labs/hypercounter/utils"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// State
// 0x0/address -> account
const accountPrefix byte = 0x0

const (
	// AccountChunks is the chunk allowance of every account key.
	AccountChunks = consts.MaxUint16

	accountHeaderSize = codec.AddressLen + consts.Uint64Len + consts.BoolLen + consts.IntLen
	// MaxAccountDataSize is the largest data section an account can store.
	MaxAccountDataSize = int(AccountChunks)*64 - accountHeaderSize
)

var ErrInvalidBalance = errors.New("invalid balance")

// Open creates the on-disk account database under [dataDir]/[namespace].
func Open(dataDir string, namespace string, cfg pebble.Config) (*pebble.Database, *prometheus.Registry, error) {
	path, err := utils.InitSubDirectory(dataDir, namespace)
	if err != nil {
		return nil, nil, err
	}
	return pebble.New(path, cfg)
}

// [accountPrefix] + [address] + [chunks]
func AccountKey(addr codec.Address) []byte {
	k := make([]byte, 0, 1+codec.AddressLen)
	k = append(k, accountPrefix)
	k = append(k, addr[:]...)
	return keys.EncodeChunks(k, AccountChunks)
}

func newAccount(addr codec.Address) *program.AccountInfo {
	return &program.AccountInfo{Key: addr, Owner: program.SystemProgramID}
}

// GetAccount returns the account at [addr]. An address that was never
// written holds a system-owned account with no lamports and no data.
func GetAccount(ctx context.Context, im state.Immutable, addr codec.Address) (*program.AccountInfo, error) {
	v, err := im.GetValue(ctx, AccountKey(addr))
	return innerGetAccount(addr, v, err)
}

// GetAccountFromReader reads [addr] from committed state.
func GetAccountFromReader(db database.KeyValueReader, addr codec.Address) (*program.AccountInfo, error) {
	v, err := db.Get(AccountKey(addr))
	return innerGetAccount(addr, v, err)
}

func innerGetAccount(addr codec.Address, v []byte, err error) (*program.AccountInfo, error) {
	if errors.Is(err, database.ErrNotFound) {
		return newAccount(addr), nil
	}
	if err != nil {
		return nil, err
	}
	return UnmarshalAccount(addr, v)
}

// SetAccount stores [acct]. Accounts that hold nothing and belong to the
// system program are removed instead.
func SetAccount(ctx context.Context, mu state.Mutable, acct *program.AccountInfo) error {
	k := AccountKey(acct.Key)
	if IsEmpty(acct) {
		return mu.Remove(ctx, k)
	}
	v, err := MarshalAccount(acct)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, k, v)
}

// IsEmpty reports whether [acct] is indistinguishable from an account that
// was never written.
func IsEmpty(acct *program.AccountInfo) bool {
	return acct.Lamports == 0 &&
		len(acct.Data) == 0 &&
		!acct.Executable &&
		acct.Owner == program.SystemProgramID
}

func MarshalAccount(acct *program.AccountInfo) ([]byte, error) {
	if len(acct.Data) > MaxAccountDataSize {
		return nil, fmt.Errorf("%w: %d bytes", program.ErrInvalidAccountDataLength, len(acct.Data))
	}
	size := accountHeaderSize + len(acct.Data)
	p := codec.NewWriter(size, size)
	p.PackAddress(acct.Owner)
	p.PackUint64(acct.Lamports)
	p.PackBool(acct.Executable)
	p.PackBytes(acct.Data)
	return p.Bytes(), p.Err()
}

func UnmarshalAccount(addr codec.Address, b []byte) (*program.AccountInfo, error) {
	p := codec.NewReader(b, len(b))
	acct := &program.AccountInfo{Key: addr}
	p.UnpackAddress(&acct.Owner)
	acct.Lamports = p.UnpackUint64(false)
	acct.Executable = p.UnpackBool()
	var data []byte
	p.UnpackBytes(MaxAccountDataSize, false, &data)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, codec.ErrTrailingBytes
	}
	if len(data) > 0 {
		acct.Data = append([]byte(nil), data...)
	}
	return acct, nil
}

func GetBalance(ctx context.Context, im state.Immutable, addr codec.Address) (uint64, error) {
	acct, err := GetAccount(ctx, im, addr)
	if err != nil {
		return 0, err
	}
	return acct.Lamports, nil
}

// AddBalance credits [amount] to [addr] and returns the new balance.
func AddBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) (uint64, error) {
	acct, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Add(acct.Lamports, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not add balance (bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance,
			acct.Lamports,
			addr,
			amount,
		)
	}
	acct.Lamports = nbal
	return nbal, SetAccount(ctx, mu, acct)
}

// SubBalance debits [amount] from [addr] and returns the new balance.
func SubBalance(ctx context.Context, mu state.Mutable, addr codec.Address, amount uint64) (uint64, error) {
	acct, err := GetAccount(ctx, mu, addr)
	if err != nil {
		return 0, err
	}
	nbal, err := smath.Sub(acct.Lamports, amount)
	if err != nil {
		return 0, fmt.Errorf(
			"%w: could not subtract balance (bal=%d, addr=%v, amount=%d)",
			ErrInvalidBalance,
			acct.Lamports,
			addr,
			amount,
		)
	}
	acct.Lamports = nbal
	return nbal, SetAccount(ctx, mu, acct)
}
