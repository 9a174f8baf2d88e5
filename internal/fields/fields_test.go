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

package fields

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/typeid"
)

type slot struct{}

type account string

func allocate(t *testing.T, l ledger.Ledger) ledger.ID {
	t.Helper()
	id, err := l.Allocate(context.Background())
	require.NoError(t, err)
	return id
}

func TestTable(t *testing.T) {
	l := ledger.NewMemory()
	t.Cleanup(func() { _ = l.Close() })

	t.Run("With Add Borrow Remove", func(t *testing.T) {
		table := NewTable()
		owner := allocate(t, l)
		key := KeyOf("balance")

		require.NoError(t, table.Add(owner, key, 10))
		assert.True(t, table.Exists(owner, key))
		assert.Equal(t, 1, table.Count(owner))

		value, err := table.Borrow(owner, key)
		require.NoError(t, err)
		assert.Equal(t, 10, value)

		err = table.Add(owner, key, 11)
		assert.ErrorIs(t, err, errors.ErrFieldAlreadyExists)

		value, err = table.Remove(owner, key)
		require.NoError(t, err)
		assert.Equal(t, 10, value)
		assert.False(t, table.Exists(owner, key))
		assert.Zero(t, table.Count(owner))

		_, err = table.Remove(owner, key)
		assert.ErrorIs(t, err, errors.ErrFieldNotFound)
		_, err = table.Borrow(owner, key)
		assert.ErrorIs(t, err, errors.ErrFieldNotFound)
	})
	t.Run("With Replace", func(t *testing.T) {
		table := NewTable()
		owner := allocate(t, l)
		key := KeyOf(account("alice"))

		_, err := table.Replace(owner, key, 1)
		assert.ErrorIs(t, err, errors.ErrFieldNotFound)

		require.NoError(t, table.Add(owner, key, 1))
		previous, err := table.Replace(owner, key, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, previous)

		value, err := table.Borrow(owner, key)
		require.NoError(t, err)
		assert.Equal(t, 2, value)
		assert.Equal(t, 1, table.Count(owner))
	})
	t.Run("Keys with the same name but different types are distinct", func(t *testing.T) {
		table := NewTable()
		owner := allocate(t, l)

		require.NoError(t, table.Add(owner, KeyOf("alice"), "string"))
		require.NoError(t, table.Add(owner, KeyOf(account("alice")), "account"))
		require.NoError(t, table.Add(owner, Key{Kind: typeid.Of[slot](), Name: "alice"}, "slot"))

		assert.Equal(t, 3, table.Count(owner))
		value, err := table.Borrow(owner, KeyOf(account("alice")))
		require.NoError(t, err)
		assert.Equal(t, "account", value)
	})
	t.Run("Owners are isolated", func(t *testing.T) {
		table := NewTable()
		first := allocate(t, l)
		second := allocate(t, l)
		key := KeyOf(1)

		require.NoError(t, table.Add(first, key, "first"))
		assert.False(t, table.Exists(second, key))
		require.NoError(t, table.Add(second, key, "second"))

		value, err := table.Borrow(first, key)
		require.NoError(t, err)
		assert.Equal(t, "first", value)
		assert.Equal(t, 1, table.Count(first))
		assert.Equal(t, 1, table.Count(second))
	})
	t.Run("With concurrent owners", func(t *testing.T) {
		table := NewTable()
		var wg sync.WaitGroup
		for i := range 20 {
			owner := allocate(t, l)
			wg.Add(1)
			go func() {
				defer wg.Done()
				key := KeyOf(i)
				assert.NoError(t, table.Add(owner, key, i))
				assert.True(t, table.Exists(owner, key))
				_, err := table.Remove(owner, key)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
	})
	t.Run("Key string", func(t *testing.T) {
		assert.Equal(t, "string(alice)", KeyOf("alice").String())
	})
}
