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

// Package balance models a fungible quantity of an asset kind K.
//
// A Balance is handled through its pointer and is never duplicated: every
// operation that moves value out of a balance takes it from the source, and a
// balance whose value was moved away as a whole is marked consumed so that it
// cannot be spent twice. Split and Join are exact, no value is ever lost or
// created. New value only enters circulation through the Supply of K.
//
// A Balance is not safe for concurrent use; it belongs to whoever holds it.
package balance

import (
	"math/bits"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/typeid"
)

// Balance holds value of the asset kind K
type Balance[K any] struct {
	value    uint64
	consumed bool
}

// Zero returns an empty balance of K
func Zero[K any]() *Balance[K] {
	return &Balance[K]{}
}

// Value returns the held value. A consumed balance holds nothing.
func (b *Balance[K]) Value() uint64 {
	if b == nil {
		return 0
	}
	return b.value
}

// Kind returns the identifier of the asset kind
func (b *Balance[K]) Kind() typeid.ID {
	return typeid.Of[K]()
}

// IsConsumed reports whether the balance has been taken, joined into another
// balance or destroyed.
func (b *Balance[K]) IsConsumed() bool {
	return b == nil || b.consumed
}

// Split moves amount out of b into a new balance.
func (b *Balance[K]) Split(amount uint64) (*Balance[K], error) {
	if b.IsConsumed() {
		return nil, errors.ErrBalanceConsumed
	}
	if amount > b.value {
		return nil, errors.ErrInsufficientBalance
	}
	b.value -= amount
	return &Balance[K]{value: amount}, nil
}

// Join moves the whole value of other into b and consumes other.
// It returns the new value of b.
func (b *Balance[K]) Join(other *Balance[K]) (uint64, error) {
	if b.IsConsumed() || other.IsConsumed() {
		return 0, errors.ErrBalanceConsumed
	}
	if b == other {
		return 0, errors.ErrBalanceConsumed
	}
	sum, carry := bits.Add64(b.value, other.value, 0)
	if carry != 0 {
		return 0, errors.ErrBalanceOverflow
	}
	b.value = sum
	other.consume()
	return b.value, nil
}

// Take moves the whole value of b into a new balance and consumes b.
// Holders of the old pointer can no longer spend from it.
func (b *Balance[K]) Take() (*Balance[K], error) {
	if b.IsConsumed() {
		return nil, errors.ErrBalanceConsumed
	}
	taken := &Balance[K]{value: b.value}
	b.consume()
	return taken, nil
}

// DestroyZero drops an empty balance. A balance still holding value cannot be
// silently discarded.
func DestroyZero[K any](b *Balance[K]) error {
	if b.IsConsumed() {
		return errors.ErrBalanceConsumed
	}
	if b.value != 0 {
		return errors.ErrNonZeroBalance
	}
	b.consume()
	return nil
}

func (b *Balance[K]) consume() {
	b.value = 0
	b.consumed = true
}
