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

// Package ledger allocates the identities of stakes and storage units.
//
// An identity is handed out once, stays live until it is released, and is
// tombstoned when released so that it is never handed out again. Three
// backends are provided: an in-memory ledger for tests and single-process use,
// a bbolt ledger that keeps the guarantee across restarts, and a redis ledger
// shared by several processes.
package ledger

import (
	"context"

	"github.com/google/uuid"
)

// Ledger allocates and releases identities.
// Implementations are safe for concurrent use.
type Ledger interface {
	// Allocate returns a fresh identity that has never been handed out before.
	Allocate(ctx context.Context) (ID, error)
	// Release retires a live identity. It fails with errors.ErrIdentityReleased
	// when the identity was already released and errors.ErrIdentityNotFound when
	// the ledger never allocated it.
	Release(ctx context.Context, id ID) error
	// Live reports whether the identity is allocated and not yet released.
	Live(ctx context.Context, id ID) (bool, error)
	// Close releases the resources held by the ledger.
	Close() error
}

// ID is an identity assigned by a Ledger
type ID uuid.UUID

// NilID is the zero identity. No ledger ever allocates it.
var NilID = ID(uuid.Nil)

// ParseID decodes the textual form of an identity
func ParseID(text string) (ID, error) {
	parsed, err := uuid.Parse(text)
	if err != nil {
		return NilID, err
	}
	return ID(parsed), nil
}

// String returns the canonical textual form
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero identity
func (id ID) IsZero() bool {
	return id == NilID
}

func newID() ID {
	return ID(uuid.New())
}
