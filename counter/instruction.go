// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package counter

import (
	"fmt"

	"github.com/near/borsh-go"

	"github.com/ava-labs/hypercounter/codec"
	"github.com/ava-labs/hypercounter/consts"
	"github.com/ava-labs/hypercounter/program"
)

const (
	InitializeID uint8 = 0
	IncrementID  uint8 = 1
)

// Instruction is one of [*Initialize] or [*Increment].
type Instruction interface {
	GetTypeID() uint8

	isInstruction()
}

// Initialize creates the counter account and sets it to [InitialValue].
type Initialize struct {
	InitialValue uint64 `json:"initialValue"`
}

func (*Initialize) GetTypeID() uint8 { return InitializeID }

func (*Initialize) isInstruction() {}

// Increment adds one to an existing counter.
type Increment struct{}

func (*Increment) GetTypeID() uint8 { return IncrementID }

func (*Increment) isInstruction() {}

// Unpack decodes instruction data. The first byte selects the variant and the
// rest is its payload. Bytes following an Increment tag are ignored.
func Unpack(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", program.ErrInvalidInstructionData)
	}
	tag, payload := data[0], data[consts.ByteLen:]
	switch tag {
	case InitializeID:
		if len(payload) != consts.Uint64Len {
			return nil, fmt.Errorf(
				"%w: initialize payload must be %d bytes, got %d",
				program.ErrInvalidInstructionData, consts.Uint64Len, len(payload),
			)
		}
		var v uint64
		if err := borsh.Deserialize(&v, payload); err != nil {
			return nil, fmt.Errorf("%w: %w", program.ErrInvalidInstructionData, err)
		}
		return &Initialize{InitialValue: v}, nil
	case IncrementID:
		return &Increment{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", program.ErrInvalidInstructionData, tag)
	}
}

// Pack is the inverse of [Unpack].
func Pack(ix Instruction) ([]byte, error) {
	switch ix := ix.(type) {
	case *Initialize:
		payload, err := borsh.Serialize(ix.InitialValue)
		if err != nil {
			return nil, err
		}
		return append([]byte{InitializeID}, payload...), nil
	case *Increment:
		return []byte{IncrementID}, nil
	default:
		return nil, program.ErrInvalidInstructionData
	}
}

// NewInitializeInstruction builds an Initialize call. [target] and [payer]
// must both sign.
func NewInitializeInstruction(
	programID codec.Address,
	target codec.Address,
	payer codec.Address,
	initialValue uint64,
) (*program.Instruction, error) {
	data, err := Pack(&Initialize{InitialValue: initialValue})
	if err != nil {
		return nil, err
	}
	return &program.Instruction{
		ProgramID: programID,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(target, true),
			program.NewAccountMeta(payer, true),
			program.NewReadonlyAccountMeta(program.SystemProgramID, false),
		},
		Data: data,
	}, nil
}

// NewIncrementInstruction builds an Increment call.
func NewIncrementInstruction(programID codec.Address, target codec.Address) (*program.Instruction, error) {
	data, err := Pack(&Increment{})
	if err != nil {
		return nil, err
	}
	return &program.Instruction{
		ProgramID: programID,
		Accounts: []program.AccountMeta{
			program.NewAccountMeta(target, false),
		},
		Data: data,
	}, nil
}
