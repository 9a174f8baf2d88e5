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

package stake

import (
	stderrors "errors"
	"fmt"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/fields"
	"github.com/tochemey/lockstake/ledger"
)

// Reader is read access to an extension storage unit.
// Only this package implements it.
type Reader interface {
	// ID returns the identity of the storage unit
	ID() ledger.ID
	// Len returns the number of entries
	Len() int
	// IsEmpty reports whether the unit holds no entry
	IsEmpty() bool
	borrow(key fields.Key) (any, error)
}

// Unit is the private storage of one extension on one stake: a collection of
// entries keyed by values of any comparable type. Two keys of different
// types never collide, even when they print the same.
//
// A Unit is reachable only through the witness of its extension. Once the
// extension is uninstalled the Unit is retired and rejects writes.
type Unit struct {
	id      ledger.ID
	table   *fields.Table
	size    int
	retired bool
}

var (
	_ Reader = (*Unit)(nil)
	_ Reader = view{}
)

func newStorage(id ledger.ID, table *fields.Table) *Unit {
	return &Unit{id: id, table: table}
}

// ID implements Reader
func (u *Unit) ID() ledger.ID {
	return u.id
}

// Len implements Reader
func (u *Unit) Len() int {
	return u.size
}

// IsEmpty implements Reader
func (u *Unit) IsEmpty() bool {
	return u.size == 0
}

func (u *Unit) borrow(key fields.Key) (any, error) {
	if u.retired {
		return nil, errors.ErrExtensionNotInstalled
	}
	value, err := u.table.Borrow(u.id, key)
	if stderrors.Is(err, errors.ErrFieldNotFound) {
		return nil, fmt.Errorf("%w: %s", errors.ErrEntryNotFound, key)
	}
	return value, err
}

func (u *Unit) writable() error {
	if u.retired {
		return errors.ErrExtensionNotInstalled
	}
	return nil
}

func (u *Unit) retire() {
	u.retired = true
}

// view hides the Unit behind Reader so that a type assertion cannot recover
// write access
type view struct {
	unit *Unit
}

func (v view) ID() ledger.ID                      { return v.unit.ID() }
func (v view) Len() int                           { return v.unit.Len() }
func (v view) IsEmpty() bool                      { return v.unit.IsEmpty() }
func (v view) borrow(key fields.Key) (any, error) { return v.unit.borrow(key) }

// AddEntry stores value under key. It fails with ErrEntryAlreadyExists when
// the key is taken, ErrInvalidEntryKey when the key could never be found again
// and ErrNilEntryValue when value is a nil interface.
func AddEntry[Key comparable, V any](u *Unit, key Key, value V) error {
	if err := u.writable(); err != nil {
		return err
	}

	k, err := entryKey(key)
	if err != nil {
		return err
	}
	if any(value) == nil {
		return fmt.Errorf("%w: %s", errors.ErrNilEntryValue, k)
	}

	if err := u.table.Add(u.id, k, value); err != nil {
		if stderrors.Is(err, errors.ErrFieldAlreadyExists) {
			return fmt.Errorf("%w: %s", errors.ErrEntryAlreadyExists, k)
		}
		return err
	}
	u.size++
	return nil
}

// Entry returns the value stored under key. It fails with ErrEntryNotFound
// when the key is absent and ErrEntryTypeMismatch when the value is not a V.
func Entry[Key comparable, V any](r Reader, key Key) (V, error) {
	var zero V
	k, err := entryKey(key)
	if err != nil {
		return zero, err
	}

	boxed, err := r.borrow(k)
	if err != nil {
		return zero, err
	}

	value, ok := boxed.(V)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", errors.ErrEntryTypeMismatch, k, boxed)
	}
	return value, nil
}

// UpdateEntry applies fn to a copy of the value under key and stores the
// result. When fn fails, or leaves a nil interface behind, the entry is left
// unchanged.
func UpdateEntry[Key comparable, V any](u *Unit, key Key, fn func(*V) error) error {
	if err := u.writable(); err != nil {
		return err
	}

	value, err := Entry[Key, V](u, key)
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}

	k := fields.KeyOf(key)
	if any(value) == nil {
		return fmt.Errorf("%w: %s", errors.ErrNilEntryValue, k)
	}

	_, err = u.table.Replace(u.id, k, value)
	return err
}

// RemoveEntry deletes the entry under key and returns its value.
// The entry is kept when its value is not a V.
func RemoveEntry[Key comparable, V any](u *Unit, key Key) (V, error) {
	var zero V
	if err := u.writable(); err != nil {
		return zero, err
	}

	value, err := Entry[Key, V](u, key)
	if err != nil {
		return zero, err
	}

	if _, err := u.table.Remove(u.id, fields.KeyOf(key)); err != nil {
		return zero, err
	}
	u.size--
	return value, nil
}

// HasEntry reports whether an entry is stored under key
func HasEntry[Key comparable](r Reader, key Key) bool {
	k, err := entryKey(key)
	if err != nil {
		return false
	}
	_, err = r.borrow(k)
	return err == nil
}

// HasEntryOfType reports whether a V is stored under key
func HasEntryOfType[Key comparable, V any](r Reader, key Key) bool {
	_, err := Entry[Key, V](r, key)
	return err == nil
}

// entryKey builds the table key of an entry. Interface typed keys are only
// checked at run time: their dynamic value must be hashable and equal to
// itself, otherwise the entry could never be looked up again.
func entryKey[Key comparable](key Key) (k fields.Key, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrInvalidEntryKey, r)
		}
	}()

	// comparing an unhashable dynamic value panics
	if same := key; same != key {
		return fields.Key{}, fmt.Errorf("%w: %v is not equal to itself", errors.ErrInvalidEntryKey, key)
	}
	return fields.KeyOf(key), nil
}
