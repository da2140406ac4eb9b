// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	AddressLen = 33

	// HRP is the human readable part of bech32 encoded addresses.
	HRP = "counter"
)

// Address identifies an account: a one byte type prefix followed by a 32
// byte identifier (hash of a public key or of a program name).
type Address [AddressLen]byte

var EmptyAddress = Address{}

// CreateAddress returns [Address] made from concatenating
// [typeID] with [id].
func CreateAddress(typeID uint8, id ids.ID) Address {
	var a Address
	a[0] = typeID
	copy(a[1:], id[:])
	return a
}

func (a Address) TypeID() uint8 {
	return a[0]
}

// String implements fmt.Stringer.
func (a Address) String() string {
	s, err := AddressBech32(HRP, a)
	if err != nil {
		return hex.EncodeToString(a[:])
	}
	return s
}

// MarshalText returns the bech32 representation of a.
func (a Address) MarshalText() ([]byte, error) {
	s, err := AddressBech32(HRP, a)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// UnmarshalText accepts both bech32 and 0x-prefixed hex encodings.
func (a *Address) UnmarshalText(input []byte) error {
	addr, err := ParseAddress(string(input))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// AddressBech32 returns the bech32 encoding of [p] under [hrp].
func AddressBech32(hrp string, p Address) (string, error) {
	conv, err := bech32.ConvertBits(p[:], 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, conv)
}

// ParseAddressBech32 decodes [saddr] and checks it was encoded under [hrp].
func ParseAddressBech32(hrp, saddr string) (Address, error) {
	phrp, data, err := bech32.Decode(saddr)
	if err != nil {
		return EmptyAddress, err
	}
	if phrp != hrp {
		return EmptyAddress, fmt.Errorf("%w: expected %s, got %s", ErrIncorrectHRP, hrp, phrp)
	}
	p, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return EmptyAddress, err
	}
	if len(p) != AddressLen {
		return EmptyAddress, fmt.Errorf("%w: %d", ErrInvalidSize, len(p))
	}
	return Address(p), nil
}

// ParseAddress accepts either a bech32 address under [HRP] or a hex string.
func ParseAddress(s string) (Address, error) {
	if len(s) > len(HRP) && s[:len(HRP)] == HRP {
		return ParseAddressBech32(HRP, s)
	}
	b, err := LoadHex(s, AddressLen)
	if err != nil {
		return EmptyAddress, err
	}
	return Address(b), nil
}
