// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroValue is returned when a stake is created from a balance holding no value.
	// A stake with no value has no meaning.
	ErrZeroValue = errors.New("stake balance must be greater than zero")

	// ErrAuthorityAlreadyExists is returned when a credential type has already been granted to a stake.
	ErrAuthorityAlreadyExists = errors.New("authority already exists")

	// ErrExtensionAlreadyInstalled is returned when an extension type is already installed on a stake.
	ErrExtensionAlreadyInstalled = errors.New("extension already installed")

	// ErrExtensionNotInstalled is returned when an extension type is not installed on a stake.
	ErrExtensionNotInstalled = errors.New("extension not installed")

	// ErrStorageNotEmpty is returned when an extension is uninstalled while its storage still holds entries.
	// Uninstall never discards data; the extension has to clean up its own storage first.
	ErrStorageNotEmpty = errors.New("extension storage is not empty")

	// ErrExtensionsNotEmpty is returned when a stake is destroyed while any extension remains installed.
	ErrExtensionsNotEmpty = errors.New("stake still has installed extensions")

	// ErrInvalidWitness is returned when a capability witness type can be constructed outside of
	// its declaring package. A valid witness is a zero-size, named, unexported struct type.
	ErrInvalidWitness = errors.New("invalid capability witness")

	// ErrStakeDestroyed is returned when an operation targets a stake that has already been destroyed.
	ErrStakeDestroyed = errors.New("stake is destroyed")

	// ErrNilStake is returned when an operation receives a nil stake.
	ErrNilStake = errors.New("stake is nil")

	// ErrBalanceConsumed is returned when a balance has already been joined, destroyed or locked.
	ErrBalanceConsumed = errors.New("balance already consumed")

	// ErrInsufficientBalance is returned when a split or decrease asks for more than the balance holds.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBalanceOverflow is returned when a join or supply increase would overflow the value range.
	ErrBalanceOverflow = errors.New("balance overflow")

	// ErrNonZeroBalance is returned when a balance that still holds value is dropped.
	ErrNonZeroBalance = errors.New("balance is not zero")

	// ErrIdentityNotFound is returned when a ledger does not know an identity.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrIdentityReleased is returned when an identity is released a second time.
	ErrIdentityReleased = errors.New("identity already released")

	// ErrLedgerClosed is returned when a ledger is used after Close.
	ErrLedgerClosed = errors.New("ledger is closed")

	// ErrFieldAlreadyExists is returned when an attached field key is already taken.
	ErrFieldAlreadyExists = errors.New("field already exists")

	// ErrFieldNotFound is returned when an attached field key is absent.
	ErrFieldNotFound = errors.New("field not found")

	// ErrEntryAlreadyExists is returned when a storage entry key is already taken.
	ErrEntryAlreadyExists = errors.New("storage entry already exists")

	// ErrEntryNotFound is returned when a storage entry key is absent.
	ErrEntryNotFound = errors.New("storage entry not found")

	// ErrEntryTypeMismatch is returned when a storage entry is read with a value type different
	// from the one it was written with.
	ErrEntryTypeMismatch = errors.New("storage entry type mismatch")

	// ErrInvalidEntryKey is returned when a storage entry key cannot be hashed or
	// is not equal to itself, such as a NaN. Such a key could never be removed.
	ErrInvalidEntryKey = errors.New("invalid storage entry key")

	// ErrNilEntryValue is returned when a storage entry value is a nil interface.
	// A nil interface has no type to read it back with.
	ErrNilEntryValue = errors.New("storage entry value is nil")

	// ErrSinkClosed is returned when an audit sink is used after Close.
	ErrSinkClosed = errors.New("audit sink is closed")
)

// OperationError decorates a stake operation failure with the operation name
// and the stake identity. The underlying sentinel remains reachable with errors.Is.
type OperationError struct {
	op      string
	stakeID string
	err     error
}

// enforce compilation error
var _ error = (*OperationError)(nil)

// NewOperationError creates an instance of OperationError
func NewOperationError(op, stakeID string, err error) *OperationError {
	return &OperationError{
		op:      op,
		stakeID: stakeID,
		err:     err,
	}
}

// Error implements the standard error interface
func (e *OperationError) Error() string {
	if e.stakeID == "" {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return fmt.Sprintf("%s (stake=%s): %v", e.op, e.stakeID, e.err)
}

// Unwrap returns the underlying error
func (e *OperationError) Unwrap() error {
	return e.err
}

// Op returns the name of the failed operation
func (e *OperationError) Op() string {
	return e.op
}

// StakeID returns the identity of the stake the operation targeted.
// It is empty when the failure happened before an identity was assigned.
func (e *OperationError) StakeID() string {
	return e.stakeID
}
