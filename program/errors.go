// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package program

import "errors"

// Errors a program may return to the runtime.
var (
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrInvalidInstructionData    = errors.New("invalid instruction data")
	ErrInvalidAccountData        = errors.New("invalid account data")
	ErrAccountDataTooSmall       = errors.New("account data too small")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrIncorrectProgramID        = errors.New("incorrect program id")
	ErrMissingRequiredSignature  = errors.New("missing required signature")
	ErrAccountAlreadyInitialized = errors.New("account already initialized")
	ErrUninitializedAccount      = errors.New("uninitialized account")
	ErrNotEnoughAccountKeys      = errors.New("not enough account keys")
	ErrAccountAlreadyInUse       = errors.New("account already in use")
	ErrInvalidAccountDataLength  = errors.New("invalid account data length")
	ErrUnsupportedProgramID      = errors.New("unsupported program id")
)

// Errors raised by the runtime when a program breaks an execution rule.
var (
	ErrUnbalancedInstruction       = errors.New("sum of account balances before and after instruction do not match")
	ErrModifiedProgramID           = errors.New("instruction illegally modified the program id of an account")
	ErrExternalAccountLamportSpend = errors.New("instruction spent from the balance of an account it does not own")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrReadonlyLamportChange       = errors.New("instruction changed the balance of a read-only account")
	ErrReadonlyDataModified        = errors.New("instruction modified data of a read-only account")
	ErrExecutableModified          = errors.New("instruction changed an executable account")
	ErrPrivilegeEscalation         = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrReentrancyNotAllowed        = errors.New("cross-program invocation reentrancy not allowed")
	ErrMissingAccount              = errors.New("instruction references an account not loaded by the transaction")
)

// CodeUnknown is returned by [Code] for errors outside the known set.
const CodeUnknown uint32 = 0xFFFF_FFFF

var codes = []error{
	nil,
	ErrInvalidArgument,
	ErrInvalidInstructionData,
	ErrInvalidAccountData,
	ErrAccountDataTooSmall,
	ErrInsufficientFunds,
	ErrIncorrectProgramID,
	ErrMissingRequiredSignature,
	ErrAccountAlreadyInitialized,
	ErrUninitializedAccount,
	ErrNotEnoughAccountKeys,
	ErrAccountAlreadyInUse,
	ErrInvalidAccountDataLength,
	ErrUnsupportedProgramID,
	ErrUnbalancedInstruction,
	ErrModifiedProgramID,
	ErrExternalAccountLamportSpend,
	ErrExternalAccountDataModified,
	ErrReadonlyLamportChange,
	ErrReadonlyDataModified,
	ErrExecutableModified,
	ErrPrivilegeEscalation,
	ErrCallDepth,
	ErrReentrancyNotAllowed,
	ErrMissingAccount,
}

// Code returns the stable numeric code of [err]. Wrapped errors resolve to
// the code of the sentinel they wrap; nil is 0.
func Code(err error) uint32 {
	if err == nil {
		return 0
	}
	for i, sentinel := range codes[1:] {
		if errors.Is(err, sentinel) {
			return uint32(i + 1)
		}
	}
	return CodeUnknown
}

// FromCode is the inverse of [Code]. It returns nil for unknown codes.
func FromCode(code uint32) error {
	if code >= uint32(len(codes)) {
		return nil
	}
	return codes[code]
}
