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

// Package stake implements a locked position on a fungible asset that
// untrusted extension modules can extend safely.
//
// A Stake holds a Balance that is set once at creation and handed back whole
// at destruction. Over its life it collects authority credentials, which are
// permanent, and hosts extensions, each owning one private storage unit.
// Credentials and extensions are identified by witness types: zero-size
// unexported struct types that only their declaring package can instantiate.
// Passing a witness value is the proof that the caller is that package.
//
// Operations are synchronous. A Stake is not safe for concurrent mutation; the
// holder of the *Stake serializes access to it. A failed operation leaves the
// stake unchanged and emits nothing.
package stake

import (
	"context"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/balance"
	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/typeid"
)

const (
	opCreate    = "create"
	opDestroy   = "destroy"
	opAuthority = "add_authority"
	opInstall   = "install_extension"
	opUninstall = "uninstall_extension"
	opStorage   = "storage"
	opStorageMu = "storage_mut"
)

// Stake is a locked quantity of the asset kind K
type Stake[K any] struct {
	id          ledger.ID
	rt          *Runtime
	balance     *balance.Balance[K]
	authorities mapset.Set[typeid.ID]
	extensions  mapset.Set[typeid.ID]
	destroyed   bool
}

// New locks the whole of b into a new stake. b is consumed on success and
// left untouched on failure.
//
// It fails with ErrZeroValue when b holds nothing and ErrBalanceConsumed when
// b was already moved.
func New[K any](ctx context.Context, rt *Runtime, b *balance.Balance[K]) (*Stake[K], error) {
	switch {
	case b == nil:
		return nil, rt.fail(ctx, opCreate, ledger.NilID, errors.ErrZeroValue)
	case b.IsConsumed():
		return nil, rt.fail(ctx, opCreate, ledger.NilID, errors.ErrBalanceConsumed)
	case b.Value() == 0:
		return nil, rt.fail(ctx, opCreate, ledger.NilID, errors.ErrZeroValue)
	}

	id, err := rt.ledger.Allocate(ctx)
	if err != nil {
		return nil, rt.fail(ctx, opCreate, ledger.NilID, err)
	}

	locked, err := b.Take()
	if err != nil {
		if rerr := rt.ledger.Release(ctx, id); rerr != nil {
			rt.logger.Warnf("failed to release identity=(%s) of an aborted stake: %v", id, rerr)
		}
		return nil, rt.fail(ctx, opCreate, ledger.NilID, err)
	}

	stake := &Stake[K]{
		id:          id,
		rt:          rt,
		balance:     locked,
		authorities: mapset.NewThreadUnsafeSet[typeid.ID](),
		extensions:  mapset.NewThreadUnsafeSet[typeid.ID](),
	}

	rt.emit(ctx, audit.Created{Stake: id, Amount: locked.Value(), AssetKind: locked.Kind()})
	rt.metrics.Created(ctx)
	rt.logger.Debugf("stake=(%s) created with amount=(%d) of %s", id, locked.Value(), locked.Kind())
	return stake, nil
}

// Destroy retires the stake and returns its balance exactly as it was locked.
// It fails with ErrExtensionsNotEmpty while any extension is installed.
func (s *Stake[K]) Destroy(ctx context.Context) (*balance.Balance[K], error) {
	if err := s.usable(); err != nil {
		return nil, s.fail(ctx, opDestroy, err)
	}
	if !s.extensions.IsEmpty() {
		return nil, s.fail(ctx, opDestroy, errors.ErrExtensionsNotEmpty)
	}

	if err := s.rt.ledger.Release(ctx, s.id); err != nil {
		return nil, s.fail(ctx, opDestroy, err)
	}

	released := s.balance
	s.balance = nil
	s.destroyed = true

	s.rt.emit(ctx, audit.Destroyed{Stake: s.id, Amount: released.Value()})
	s.rt.metrics.Destroyed(ctx)
	s.rt.logger.Debugf("stake=(%s) destroyed, returned amount=(%d)", s.id, released.Value())
	return released, nil
}

// ID returns the stake identity
func (s *Stake[K]) ID() ledger.ID {
	return s.id
}

// Value returns the locked amount. It is zero once the stake is destroyed.
func (s *Stake[K]) Value() uint64 {
	return s.balance.Value()
}

// AssetKind returns the type identifier of K
func (s *Stake[K]) AssetKind() typeid.ID {
	return typeid.Of[K]()
}

// IsDestroyed reports whether the stake was destroyed
func (s *Stake[K]) IsDestroyed() bool {
	return s.destroyed
}

// HasAuthority reports whether the credential was granted to the stake.
// Credentials are public facts.
func (s *Stake[K]) HasAuthority(authority typeid.ID) bool {
	return s.authorities.Contains(authority)
}

// Authorities returns the granted credentials ordered by name
func (s *Stake[K]) Authorities() []typeid.ID {
	return sorted(s.authorities)
}

// HasExtension reports whether the extension is installed.
// Which extensions are installed is public; their storage is not.
func (s *Stake[K]) HasExtension(extension typeid.ID) bool {
	return s.extensions.Contains(extension)
}

// Extensions returns the installed extensions ordered by name
func (s *Stake[K]) Extensions() []typeid.ID {
	return sorted(s.extensions)
}

// ExtensionCount returns the number of installed extensions
func (s *Stake[K]) ExtensionCount() int {
	return s.extensions.Cardinality()
}

func (s *Stake[K]) usable() error {
	if s.destroyed {
		return errors.ErrStakeDestroyed
	}
	return nil
}

func (s *Stake[K]) fail(ctx context.Context, op string, err error) error {
	return s.rt.fail(ctx, op, s.id, err)
}

func sorted(set mapset.Set[typeid.ID]) []typeid.ID {
	ids := set.ToSlice()
	slices.SortFunc(ids, typeid.Compare)
	return ids
}
