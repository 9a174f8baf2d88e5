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
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tochemey/lockstake/errors"
)

func TestMemory(t *testing.T) {
	ledger := NewMemory()
	testLedger(t, ledger)
}

func TestBolt(t *testing.T) {
	t.Run("With ledger semantics", func(t *testing.T) {
		ledger, err := NewBolt(filepath.Join(t.TempDir(), "ledger.db"))
		require.NoError(t, err)
		testLedger(t, ledger)
	})
	t.Run("With tombstones surviving a reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "ledger.db")

		ledger, err := NewBolt(path)
		require.NoError(t, err)

		kept, err := ledger.Allocate(ctx)
		require.NoError(t, err)
		released, err := ledger.Allocate(ctx)
		require.NoError(t, err)
		require.NoError(t, ledger.Release(ctx, released))
		require.NoError(t, ledger.Close())

		reopened, err := NewBolt(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = reopened.Close() })

		live, err := reopened.Live(ctx, kept)
		require.NoError(t, err)
		assert.True(t, live)

		live, err = reopened.Live(ctx, released)
		require.NoError(t, err)
		assert.False(t, live)

		err = reopened.Release(ctx, released)
		assert.ErrorIs(t, err, errors.ErrIdentityReleased)
		require.NoError(t, reopened.Release(ctx, kept))
	})
	t.Run("With an invalid path", func(t *testing.T) {
		ledger, err := NewBolt(filepath.Join(t.TempDir(), "missing", "ledger.db"))
		require.Error(t, err)
		assert.Nil(t, ledger)
	})
}

func TestRedis(t *testing.T) {
	t.Run("With invalid config", func(t *testing.T) {
		ledger, err := NewRedis(context.Background(), &RedisConfig{Addr: "localhost", DB: -1})
		require.Error(t, err)
		assert.Nil(t, ledger)
	})

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	addr := startRedis(t)
	t.Run("With ledger semantics", func(t *testing.T) {
		ledger, err := NewRedis(context.Background(), &RedisConfig{
			Addr:      addr,
			KeyPrefix: "lockstake-test",
		})
		require.NoError(t, err)
		testLedger(t, ledger)
	})
	t.Run("With a ledger sharing the key space", func(t *testing.T) {
		ctx := context.Background()
		config := &RedisConfig{Addr: addr, KeyPrefix: "lockstake-shared"}

		first, err := NewRedis(ctx, config)
		require.NoError(t, err)
		t.Cleanup(func() { _ = first.Close() })
		second, err := NewRedis(ctx, config)
		require.NoError(t, err)
		t.Cleanup(func() { _ = second.Close() })

		id, err := first.Allocate(ctx)
		require.NoError(t, err)

		live, err := second.Live(ctx, id)
		require.NoError(t, err)
		assert.True(t, live)

		require.NoError(t, second.Release(ctx, id))
		assert.ErrorIs(t, first.Release(ctx, id), errors.ErrIdentityReleased)
	})
}

func TestID(t *testing.T) {
	assert.True(t, NilID.IsZero())
	id := newID()
	assert.False(t, id.IsZero())

	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("not-an-identity")
	assert.Error(t, err)
}

// testLedger runs the behaviour every Ledger shares. It closes the ledger.
func testLedger(t *testing.T, ledger Ledger) {
	t.Helper()
	ctx := context.Background()

	t.Run("Allocate hands out live identities", func(t *testing.T) {
		id, err := ledger.Allocate(ctx)
		require.NoError(t, err)
		assert.False(t, id.IsZero())

		live, err := ledger.Live(ctx, id)
		require.NoError(t, err)
		assert.True(t, live)
	})
	t.Run("Release retires an identity once", func(t *testing.T) {
		id, err := ledger.Allocate(ctx)
		require.NoError(t, err)

		require.NoError(t, ledger.Release(ctx, id))
		live, err := ledger.Live(ctx, id)
		require.NoError(t, err)
		assert.False(t, live)

		err = ledger.Release(ctx, id)
		assert.ErrorIs(t, err, errors.ErrIdentityReleased)
	})
	t.Run("Release rejects unknown identities", func(t *testing.T) {
		err := ledger.Release(ctx, newID())
		assert.ErrorIs(t, err, errors.ErrIdentityNotFound)

		live, err := ledger.Live(ctx, newID())
		require.NoError(t, err)
		assert.False(t, live)
	})
	t.Run("Identities are never handed out twice", func(t *testing.T) {
		const workers, perWorker = 8, 25

		var (
			mu   sync.Mutex
			seen = make(map[ID]struct{}, workers*perWorker)
			wg   sync.WaitGroup
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range perWorker {
					id, err := ledger.Allocate(ctx)
					if !assert.NoError(t, err) {
						return
					}
					assert.NoError(t, ledger.Release(ctx, id))
					mu.Lock()
					seen[id] = struct{}{}
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Len(t, seen, workers*perWorker)
	})
	t.Run("Canceled context aborts", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := ledger.Allocate(canceled)
		assert.ErrorIs(t, err, context.Canceled)
	})
	t.Run("Closed ledger rejects calls", func(t *testing.T) {
		id, err := ledger.Allocate(ctx)
		require.NoError(t, err)

		require.NoError(t, ledger.Close())
		require.NoError(t, ledger.Close())

		_, err = ledger.Allocate(ctx)
		assert.ErrorIs(t, err, errors.ErrLedgerClosed)
		assert.ErrorIs(t, ledger.Release(ctx, id), errors.ErrLedgerClosed)
		_, err = ledger.Live(ctx, id)
		assert.ErrorIs(t, err, errors.ErrLedgerClosed)
	})
}

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	endpoint, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)
	return endpoint
}
