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

// Package rewards is a reward pool extension. A stake registers in a pool,
// accrues rewards while registered and must unregister before its owner can
// uninstall the extension or destroy the stake.
package rewards

import (
	"context"
	"fmt"
	"math/bits"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/stake"
	"github.com/tochemey/lockstake/typeid"
)

// rewards is the witness of this extension
type rewards struct{}

// pool keys registrations in the extension storage
type pool string

// Registration is the state kept for a stake registered in a pool
type Registration struct {
	Pool    string
	Shares  uint64
	Accrued uint64
	Claimed uint64
}

// ID returns the identifier of the rewards extension
func ID() typeid.ID {
	return typeid.Of[rewards]()
}

// Register enrolls the stake in the named pool with shares equal to the
// stake value. The extension is installed on first registration.
func Register[K any](ctx context.Context, s *stake.Stake[K], name string) error {
	if s == nil {
		return errors.ErrNilStake
	}
	if !s.HasExtension(ID()) {
		if err := stake.InstallExtension(ctx, s, rewards{}); err != nil {
			return err
		}
	}

	unit, err := stake.StorageMut(s, rewards{})
	if err != nil {
		return err
	}
	return stake.AddEntry(unit, pool(name), Registration{Pool: name, Shares: s.Value()})
}

// Accrue credits amount to the stake registration in the named pool
func Accrue[K any](s *stake.Stake[K], name string, amount uint64) error {
	unit, err := stake.StorageMut(s, rewards{})
	if err != nil {
		return err
	}
	return stake.UpdateEntry(unit, pool(name), func(r *Registration) error {
		total, carry := bits.Add64(r.Accrued, amount, 0)
		if carry != 0 {
			return fmt.Errorf("rewards: pool %s: %w", name, errors.ErrBalanceOverflow)
		}
		r.Accrued = total
		return nil
	})
}

// Claim pays out the accrued amount of the registration and returns it
func Claim[K any](s *stake.Stake[K], name string) (uint64, error) {
	unit, err := stake.StorageMut(s, rewards{})
	if err != nil {
		return 0, err
	}

	var paid uint64
	err = stake.UpdateEntry(unit, pool(name), func(r *Registration) error {
		paid = r.Accrued
		r.Claimed += r.Accrued
		r.Accrued = 0
		return nil
	})
	return paid, err
}

// Lookup returns the registration of the stake in the named pool
func Lookup[K any](s *stake.Stake[K], name string) (Registration, error) {
	view, err := stake.Storage(s, rewards{})
	if err != nil {
		return Registration{}, err
	}
	return stake.Entry[pool, Registration](view, pool(name))
}

// Unregister removes the stake from the named pool. Once the stake is in no
// pool the extension uninstalls itself.
func Unregister[K any](ctx context.Context, s *stake.Stake[K], name string) (Registration, error) {
	unit, err := stake.StorageMut(s, rewards{})
	if err != nil {
		return Registration{}, err
	}

	registration, err := stake.RemoveEntry[pool, Registration](unit, pool(name))
	if err != nil {
		return Registration{}, err
	}

	if unit.IsEmpty() {
		if err := stake.UninstallExtension(ctx, s, rewards{}); err != nil {
			return registration, err
		}
	}
	return registration, nil
}
