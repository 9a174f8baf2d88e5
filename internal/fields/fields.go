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

// Package fields keeps values attached to ledger identities.
//
// A field is addressed by the identity it hangs off and a Key made of a type
// identifier and a comparable name. The table is the only place attached
// values live; callers that hold an identity but not the Key cannot reach a
// field.
package fields

import (
	"fmt"
	"sync"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/typeid"
)

// Key addresses a field under an identity. Name must be comparable.
type Key struct {
	Kind typeid.ID
	Name any
}

// KeyOf builds the Key of a typed name
func KeyOf[N comparable](name N) Key {
	return Key{Kind: typeid.Of[N](), Name: name}
}

// String returns the textual form of the key
func (k Key) String() string {
	return fmt.Sprintf("%s(%v)", k.Kind, k.Name)
}

type address struct {
	owner ledger.ID
	key   Key
}

// Table stores attached fields. It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	values map[address]any
	counts map[ledger.ID]int
}

// NewTable creates an empty Table
func NewTable() *Table {
	return &Table{
		values: make(map[address]any),
		counts: make(map[ledger.ID]int),
	}
}

// Add attaches value under (owner, key). It fails with ErrFieldAlreadyExists
// when the address is taken.
func (t *Table) Add(owner ledger.ID, key Key, value any) error {
	addr := address{owner: owner, key: key}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.values[addr]; ok {
		return fmt.Errorf("%w: %s", errors.ErrFieldAlreadyExists, key)
	}
	t.values[addr] = value
	t.counts[owner]++
	return nil
}

// Borrow returns the value attached under (owner, key)
func (t *Table) Borrow(owner ledger.ID, key Key) (any, error) {
	t.mu.RLock()
	value, ok := t.values[address{owner: owner, key: key}]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrFieldNotFound, key)
	}
	return value, nil
}

// Replace swaps the value attached under (owner, key) and returns the
// previous one. The field must exist.
func (t *Table) Replace(owner ledger.ID, key Key, value any) (any, error) {
	addr := address{owner: owner, key: key}

	t.mu.Lock()
	defer t.mu.Unlock()
	previous, ok := t.values[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrFieldNotFound, key)
	}
	t.values[addr] = value
	return previous, nil
}

// Remove detaches and returns the value under (owner, key)
func (t *Table) Remove(owner ledger.ID, key Key) (any, error) {
	addr := address{owner: owner, key: key}

	t.mu.Lock()
	defer t.mu.Unlock()
	value, ok := t.values[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrFieldNotFound, key)
	}
	delete(t.values, addr)
	if t.counts[owner]--; t.counts[owner] == 0 {
		delete(t.counts, owner)
	}
	return value, nil
}

// Exists reports whether a field is attached under (owner, key)
func (t *Table) Exists(owner ledger.ID, key Key) bool {
	t.mu.RLock()
	_, ok := t.values[address{owner: owner, key: key}]
	t.mu.RUnlock()
	return ok
}

// Count returns the number of fields attached to owner
func (t *Table) Count(owner ledger.ID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[owner]
}
