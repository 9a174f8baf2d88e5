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
	"context"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/capability"
	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/fields"
	"github.com/tochemey/lockstake/typeid"
)

// extensionSlot keys the storage units attached to a stake
type extensionSlot struct{}

func slotKey(extension typeid.ID) fields.Key {
	return fields.Key{Kind: typeid.Of[extensionSlot](), Name: extension}
}

// InstallExtension attaches an empty storage unit owned by the extension
// identified by the witness type W.
//
// It fails with ErrExtensionAlreadyInstalled when W is already installed.
func InstallExtension[K, W any](ctx context.Context, s *Stake[K], witness W) error {
	if s == nil {
		return errors.NewOperationError(opInstall, "", errors.ErrNilStake)
	}
	if err := s.usable(); err != nil {
		return s.fail(ctx, opInstall, err)
	}

	extension, err := capability.Of(witness)
	if err != nil {
		return s.fail(ctx, opInstall, err)
	}

	if s.extensions.Contains(extension) {
		return s.fail(ctx, opInstall, errors.ErrExtensionAlreadyInstalled)
	}

	storageID, err := s.rt.ledger.Allocate(ctx)
	if err != nil {
		return s.fail(ctx, opInstall, err)
	}

	unit := newStorage(storageID, s.rt.fields)
	if err := s.rt.fields.Add(s.id, slotKey(extension), unit); err != nil {
		if rerr := s.rt.ledger.Release(ctx, storageID); rerr != nil {
			s.rt.logger.Warnf("failed to release storage=(%s) of an aborted install: %v", storageID, rerr)
		}
		return s.fail(ctx, opInstall, err)
	}
	s.extensions.Add(extension)

	s.rt.emit(ctx, audit.ExtensionInstalled{Stake: s.id, Extension: extension, Storage: storageID})
	s.rt.metrics.ExtensionInstalled(ctx)
	s.rt.logger.Debugf("stake=(%s) installed extension=(%s) with storage=(%s)", s.id, extension, storageID)
	return nil
}

// UninstallExtension detaches the storage unit of the extension identified by
// the witness type W. The unit must be empty: uninstalling never discards
// data, the extension empties its storage first.
//
// It fails with ErrExtensionNotInstalled when W is not installed and
// ErrStorageNotEmpty while the unit holds entries.
func UninstallExtension[K, W any](ctx context.Context, s *Stake[K], witness W) error {
	if s == nil {
		return errors.NewOperationError(opUninstall, "", errors.ErrNilStake)
	}
	if err := s.usable(); err != nil {
		return s.fail(ctx, opUninstall, err)
	}

	extension, err := capability.Of(witness)
	if err != nil {
		return s.fail(ctx, opUninstall, err)
	}

	unit, err := s.unit(extension)
	if err != nil {
		return s.fail(ctx, opUninstall, err)
	}

	if !unit.IsEmpty() {
		return s.fail(ctx, opUninstall, errors.ErrStorageNotEmpty)
	}

	if err := s.rt.ledger.Release(ctx, unit.id); err != nil {
		return s.fail(ctx, opUninstall, err)
	}

	// the slot was just borrowed and the stake is held exclusively
	_, _ = s.rt.fields.Remove(s.id, slotKey(extension))
	unit.retire()
	s.extensions.Remove(extension)

	s.rt.emit(ctx, audit.ExtensionRemoved{Stake: s.id, Extension: extension})
	s.rt.metrics.ExtensionRemoved(ctx)
	s.rt.logger.Debugf("stake=(%s) uninstalled extension=(%s)", s.id, extension)
	return nil
}

// Storage returns a read-only view of the storage unit owned by the extension
// identified by the witness type W.
//
// It fails with ErrExtensionNotInstalled when W is not installed.
func Storage[K, W any](s *Stake[K], witness W) (Reader, error) {
	unit, err := storageOf(s, witness, opStorage)
	if err != nil {
		return nil, err
	}
	return view{unit: unit}, nil
}

// StorageMut returns the storage unit owned by the extension identified by the
// witness type W.
//
// It fails with ErrExtensionNotInstalled when W is not installed.
func StorageMut[K, W any](s *Stake[K], witness W) (*Unit, error) {
	return storageOf(s, witness, opStorageMu)
}

func storageOf[K, W any](s *Stake[K], witness W, op string) (*Unit, error) {
	if s == nil {
		return nil, errors.NewOperationError(op, "", errors.ErrNilStake)
	}

	ctx := context.Background()
	if err := s.usable(); err != nil {
		return nil, s.fail(ctx, op, err)
	}

	extension, err := capability.Of(witness)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}

	unit, err := s.unit(extension)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	return unit, nil
}

// unit returns the storage unit attached for the extension
func (s *Stake[K]) unit(extension typeid.ID) (*Unit, error) {
	if !s.extensions.Contains(extension) {
		return nil, errors.ErrExtensionNotInstalled
	}

	boxed, err := s.rt.fields.Borrow(s.id, slotKey(extension))
	if err != nil {
		return nil, err
	}

	unit, ok := boxed.(*Unit)
	if !ok {
		return nil, errors.ErrExtensionNotInstalled
	}
	return unit, nil
}
