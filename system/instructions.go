// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/program"
)

const (
	CreateAccountID uint8 = 0
	TransferID      uint8 = 1

	// MaxPermittedDataLength bounds the space a single account may allocate.
	// It must fit in the chunk allowance of an account key.
	MaxPermittedDataLength = 4*units.MiB - units.KiB

	createAccountSize = consts.ByteLen + 2*consts.Uint64Len + codec.AddressLen
	transferSize      = consts.ByteLen + consts.Uint64Len
)

type Instruction interface {
	GetTypeID() uint8
	Marshal(p *codec.Packer)
	Size() int
}

// CreateAccount moves [Lamports] from the funding account to a new account,
// allocates [Space] zeroed bytes for it and assigns it to [Owner].
//
// Accounts: [from (signer, writable), to (signer, writable)].
type CreateAccount struct {
	Lamports uint64        `json:"lamports"`
	Space    uint64        `json:"space"`
	Owner    codec.Address `json:"owner"`
}

func (*CreateAccount) GetTypeID() uint8 { return CreateAccountID }

func (*CreateAccount) Size() int { return createAccountSize }

func (c *CreateAccount) Marshal(p *codec.Packer) {
	p.PackByte(CreateAccountID)
	p.PackUint64(c.Lamports)
	p.PackUint64(c.Space)
	p.PackAddress(c.Owner)
}

// Transfer moves [Lamports] between two accounts.
//
// Accounts: [from (signer, writable), to (writable)].
type Transfer struct {
	Lamports uint64 `json:"lamports"`
}

func (*Transfer) GetTypeID() uint8 { return TransferID }

func (*Transfer) Size() int { return transferSize }

func (t *Transfer) Marshal(p *codec.Packer) {
	p.PackByte(TransferID)
	p.PackUint64(t.Lamports)
}

// Pack encodes [ix] as system program instruction data.
func Pack(ix Instruction) ([]byte, error) {
	p := codec.NewWriter(ix.Size(), ix.Size())
	ix.Marshal(p)
	return p.Bytes(), p.Err()
}

// Unpack decodes system program instruction data.
func Unpack(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, program.ErrInvalidInstructionData
	}
	p := codec.NewReader(data, len(data))
	var ix Instruction
	switch tag := p.UnpackByte(); tag {
	case CreateAccountID:
		c := &CreateAccount{}
		c.Lamports = p.UnpackUint64(false)
		c.Space = p.UnpackUint64(false)
		p.UnpackAddress(&c.Owner)
		ix = c
	case TransferID:
		ix = &Transfer{Lamports: p.UnpackUint64(false)}
	default:
		return nil, fmt.Errorf("%w: unknown system instruction %d", program.ErrInvalidInstructionData, tag)
	}
	if err := p.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", program.ErrInvalidInstructionData, err)
	}
	if !p.Empty() {
		return nil, fmt.Errorf("%w: %w", program.ErrInvalidInstructionData, codec.ErrTrailingBytes)
	}
	return ix, nil
}

func mustPack(ix Instruction) []byte {
	data, err := Pack(ix)
	if err != nil {
		panic(err)
	}
	return data
}

// NewCreateAccountInstruction builds a call to [CreateAccount].
func NewCreateAccountInstruction(
	from codec.Address,
	to codec.Address,
	lamports uint64,
	space uint64,
	owner codec.Address,
) *program.Instruction {
	return &program.Instruction{
		ProgramID: program.SystemProgramID,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(from, true),
			program.NewAccountMeta(to, true),
		},
		Data: mustPack(&CreateAccount{Lamports: lamports, Space: space, Owner: owner}),
	}
}

// NewTransferInstruction builds a call to [Transfer].
func NewTransferInstruction(from codec.Address, to codec.Address, lamports uint64) *program.Instruction {
	return &program.Instruction{
		ProgramID: program.SystemProgramID,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(from, true),
			program.NewAccountMeta(to, false),
		},
		Data: mustPack(&Transfer{Lamports: lamports}),
	}
}
