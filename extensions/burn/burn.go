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

// Package burn grants a stake a permanent credential in exchange for burning
// an item. The credential proves to later protocols that the burn happened.
package burn

import (
	"context"

	"github.com/tochemey/lockstake/balance"
	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/stake"
	"github.com/tochemey/lockstake/typeid"
)

// burned is the witness of the burn credential
type burned struct{}

// Credential returns the identifier of the burn credential
func Credential() typeid.ID {
	return typeid.Of[burned]()
}

// Burned reports whether the stake holds the burn credential
func Burned[K any](s *stake.Stake[K]) bool {
	return s != nil && s.HasAuthority(Credential())
}

// Burn destroys the whole item through its supply and grants the stake the
// burn credential. Nothing is burnt when the stake cannot take the credential.
func Burn[K, T any](ctx context.Context, s *stake.Stake[K], supply *balance.Supply[T], item *balance.Balance[T]) (uint64, error) {
	switch {
	case s == nil:
		return 0, errors.ErrNilStake
	case s.IsDestroyed():
		return 0, errors.ErrStakeDestroyed
	case Burned(s):
		return 0, errors.ErrAuthorityAlreadyExists
	case item.Value() == 0:
		return 0, errors.ErrZeroValue
	}

	amount, err := supply.Decrease(item)
	if err != nil {
		return 0, err
	}

	if err := stake.AddAuthority(ctx, s, burned{}); err != nil {
		return amount, err
	}
	return amount, nil
}
