// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2026 Metolius Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import "fmt"

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type (
	// ExistsError - record conflicts with one already present
	ExistsError GenericError
	// InvalidError - deterministic rejection of transaction content
	InvalidError GenericError
	// NotFoundError - referenced record is absent
	NotFoundError GenericError
	// ProcessError - backend or internal failure unrelated to content
	ProcessError GenericError
)

// common errors - keep in alphabetic order
var (
	ErrAssetNotFound               = NotFoundError("asset not found")
	ErrBlockInProgress             = ProcessError("a block is already in progress")
	ErrBlockNotFound               = NotFoundError("block not found")
	ErrCannotDecodeAccount         = InvalidError("cannot decode account")
	ErrChecksumMismatch            = InvalidError("checksum mismatch")
	ErrComposeRequiresMerge        = InvalidError("compose must merge more than one asset")
	ErrCriticalDoubleSpend         = ProcessError("output spent concurrently past validation")
	ErrDatabaseIsReadOnly          = ProcessError("database is read only")
	ErrDataInconsistency           = ProcessError("stored data is inconsistent")
	ErrDecomposeRequiresSeparation = InvalidError("decompose must split into more than one asset")
	ErrDoubleSpend                 = ExistsError("output already spent")
	ErrElectionNotFound            = NotFoundError("election not found")
	ErrFulfillmentNotPresent       = InvalidError("fulfillment is not present")
	ErrHeightOutOfSequence         = InvalidError("block height out of sequence")
	ErrIncorrectOwnersBefore       = InvalidError("owners before do not match linked output")
	ErrInvalidAmount               = InvalidError("amount must be a positive integer")
	ErrInvalidCount                = InvalidError("invalid count")
	ErrInvalidCursor               = InvalidError("invalid cursor")
	ErrInvalidKeyLength            = InvalidError("invalid key length")
	ErrInvalidKeyType              = InvalidError("invalid key type")
	ErrInvalidSignature            = InvalidError("invalid signature")
	ErrInvalidStructure            = InvalidError("structurally invalid record")
	ErrInvalidThreshold            = InvalidError("invalid signing threshold")
	ErrInvalidTransactionId        = InvalidError("transaction id does not match its content digest")
	ErrInvalidTransactionVersion   = InvalidError("invalid transaction version")
	ErrLinkedOutputNotFound        = NotFoundError("linked output does not exist")
	ErrLinkNotPermitted            = InvalidError("create transaction input cannot fulfil an output")
	ErrLinkRequired                = InvalidError("spending transaction input must fulfil an output")
	ErrMissingAssetReference       = InvalidError("asset reference is required")
	ErrMissingInputs               = InvalidError("transaction inputs are required")
	ErrMissingOutputs              = InvalidError("transaction outputs are required")
	ErrMissingOwners               = InvalidError("output owners are required")
	ErrNoBlockInProgress           = ProcessError("no block in progress")
	ErrNotInitialised              = ProcessError("not initialised")
	ErrNotPublicKey                = InvalidError("not a public key")
	ErrReservedCharacterInKey      = InvalidError("key contains a reserved character")
	ErrSharedConditionRequired     = InvalidError("outputs must share a single condition")
	ErrTransactionAlreadyExists    = ExistsError("transaction already exists")
	ErrTransactionLinksToSelf      = InvalidError("transaction links to itself")
	ErrTransactionNotFound         = NotFoundError("transaction not found")
	ErrUnknownOperation            = InvalidError("unknown transaction operation")
	ErrUnpairedAssetGroup          = InvalidError("input and output asset groups differ")
	ErrValidatorSetNotFound        = NotFoundError("validator set not found")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// IsErrExists - check if an error is in the exists class
func IsErrExists(e error) bool {
	_, ok := e.(ExistsError)
	return ok
}

// IsErrInvalid - check if an error is in the invalid class
func IsErrInvalid(e error) bool {
	if _, ok := e.(InvalidError); ok {
		return true
	}
	_, ok := e.(AmountMismatchError)
	return ok
}

// IsErrNotFound - check if an error is in the not found class
func IsErrNotFound(e error) bool {
	_, ok := e.(NotFoundError)
	return ok
}

// IsErrProcess - check if an error is in the process class
func IsErrProcess(e error) bool {
	_, ok := e.(ProcessError)
	return ok
}

// AmountMismatchError - conservation failure carrying both sums
// so callers can report the exact imbalance
type AmountMismatchError struct {
	InputSum  uint64
	OutputSum uint64
}

// the error interface method
func (e AmountMismatchError) Error() string {
	return fmt.Sprintf("amounts do not balance: inputs: %d  outputs: %d", e.InputSum, e.OutputSum)
}
