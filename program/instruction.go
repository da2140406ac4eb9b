// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import (
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
)

const (
	MaxInstructionAccounts = 64
	MaxInstructionDataSize = 10 * units.KiB

	accountMetaSize = codec.AddressLen + 2*consts.BoolLen
)

type AccountMeta struct {
	Address    codec.Address `json:"address"`
	IsSigner   bool          `json:"isSigner"`
	IsWritable bool          `json:"isWritable"`
}

// NewAccountMeta returns a writable account reference.
func NewAccountMeta(addr codec.Address, isSigner bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: isSigner, IsWritable: true}
}

// NewReadonlyAccountMeta returns a read-only account reference.
func NewReadonlyAccountMeta(addr codec.Address, isSigner bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: isSigner}
}

// Instruction is a call to [ProgramID] with an ordered account list and an
// opaque payload interpreted by the program.
type Instruction struct {
	ProgramID codec.Address `json:"programID"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      []byte        `json:"data"`
}

func (i *Instruction) Size() int {
	return codec.AddressLen +
		consts.IntLen + len(i.Accounts)*accountMetaSize +
		codec.BytesLen(i.Data)
}

func (i *Instruction) Marshal(p *codec.Packer) {
	p.PackAddress(i.ProgramID)
	p.PackInt(uint32(len(i.Accounts)))
	for _, meta := range i.Accounts {
		p.PackAddress(meta.Address)
		p.PackBool(meta.IsSigner)
		p.PackBool(meta.IsWritable)
	}
	p.PackBytes(i.Data)
}

func UnmarshalInstruction(p *codec.Packer) (*Instruction, error) {
	var i Instruction
	p.UnpackAddress(&i.ProgramID)
	n := p.UnpackInt(false)
	if n > MaxInstructionAccounts {
		return nil, ErrInvalidArgument
	}
	i.Accounts = make([]AccountMeta, n)
	for j := range i.Accounts {
		p.UnpackAddress(&i.Accounts[j].Address)
		i.Accounts[j].IsSigner = p.UnpackBool()
		i.Accounts[j].IsWritable = p.UnpackBool()
	}
	p.UnpackBytes(MaxInstructionDataSize, false, &i.Data)
	return &i, p.Err()
}
