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

package ledger

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/tochemey/lockstake/errors"
)

// Memory is an in-memory Ledger. Tombstones live as long as the ledger does.
type Memory struct {
	mu       sync.RWMutex
	live     map[ID]struct{}
	released map[ID]struct{}
	closed   *atomic.Bool
}

var _ Ledger = (*Memory)(nil)

// NewMemory creates an in-memory ledger
func NewMemory() *Memory {
	return &Memory{
		live:     make(map[ID]struct{}),
		released: make(map[ID]struct{}),
		closed:   atomic.NewBool(false),
	}
}

// Allocate implements Ledger
func (m *Memory) Allocate(ctx context.Context) (ID, error) {
	if err := m.ready(ctx); err != nil {
		return NilID, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id := newID()
		if m.known(id) {
			continue
		}
		m.live[id] = struct{}{}
		return id, nil
	}
}

// Release implements Ledger
func (m *Memory) Release(ctx context.Context, id ID) error {
	if err := m.ready(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.released[id]; ok {
		return errors.ErrIdentityReleased
	}
	if _, ok := m.live[id]; !ok {
		return errors.ErrIdentityNotFound
	}
	delete(m.live, id)
	m.released[id] = struct{}{}
	return nil
}

// Live implements Ledger
func (m *Memory) Live(ctx context.Context, id ID) (bool, error) {
	if err := m.ready(ctx); err != nil {
		return false, err
	}

	m.mu.RLock()
	_, ok := m.live[id]
	m.mu.RUnlock()
	return ok, nil
}

// Close implements Ledger
func (m *Memory) Close() error {
	m.closed.Store(true)
	return nil
}

func (m *Memory) known(id ID) bool {
	if _, ok := m.live[id]; ok {
		return true
	}
	_, ok := m.released[id]
	return ok
}

func (m *Memory) ready(ctx context.Context) error {
	if m.closed.Load() {
		return errors.ErrLedgerClosed
	}
	return ctx.Err()
}
