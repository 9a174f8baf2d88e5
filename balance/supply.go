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

package balance

import (
	"math/bits"
	"sync"

	"github.com/tochemey/lockstake/capability"
	"github.com/tochemey/lockstake/errors"
)

// Supply tracks the total value of K in circulation and is the only source of new balances.
// It is safe for concurrent use.
type Supply[K any] struct {
	mu    sync.Mutex
	value uint64
}

// NewSupply creates the supply of K. K doubles as the witness, so only the
// package declaring the asset kind can create its supply.
func NewSupply[K any](witness K) (*Supply[K], error) {
	if _, err := capability.Of(witness); err != nil {
		return nil, err
	}
	return &Supply[K]{}, nil
}

// Value returns the total value in circulation
func (s *Supply[K]) Value() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Increase mints amount and returns it as a new balance
func (s *Supply[K]) Increase(amount uint64) (*Balance[K], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, carry := bits.Add64(s.value, amount, 0)
	if carry != 0 {
		return nil, errors.ErrBalanceOverflow
	}
	s.value = total
	return &Balance[K]{value: amount}, nil
}

// Decrease burns the whole balance b and returns the burnt value
func (s *Supply[K]) Decrease(b *Balance[K]) (uint64, error) {
	if b.IsConsumed() {
		return 0, errors.ErrBalanceConsumed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b.value > s.value {
		return 0, errors.ErrInsufficientBalance
	}
	burnt := b.value
	s.value -= burnt
	b.consume()
	return burnt, nil
}
