// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

const (
	// AccountStorageOverhead is charged on top of the data of every account.
	AccountStorageOverhead uint64 = 128

	DefaultLamportsPerByteYear uint64 = 3480
	DefaultExemptionThreshold         = 2.0
)

type Rent struct {
	LamportsPerByteYear uint64  `json:"lamportsPerByteYear"`
	ExemptionThreshold  float64 `json:"exemptionThreshold"`
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// MinimumBalance returns the balance an account holding [dataLen] bytes
// needs to be exempt from rent.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	bytes := AccountStorageOverhead + dataLen
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt reports whether [balance] covers [dataLen] bytes.
func (r Rent) IsExempt(balance uint64, dataLen uint64) bool {
	return balance >= r.MinimumBalance(dataLen)
}
