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

package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// memorySink records everything written to it
type memorySink struct {
	mu      sync.Mutex
	records []Record
	err     error
	closed  bool
}

func (m *memorySink) Write(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memorySink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.err
}

func (m *memorySink) Records() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Record(nil), m.records...)
}

func TestEmitter(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	stakeID := testStakeID(t)

	t.Run("Records are stamped in order", func(t *testing.T) {
		sink := &memorySink{}
		emitter := NewEmitter(sink)
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		emitter.clock = func() time.Time { return fixed }

		require.NoError(t, emitter.Emit(ctx, Created{Stake: stakeID, Amount: 1}))
		require.NoError(t, emitter.Emit(ctx, Destroyed{Stake: stakeID, Amount: 1}))

		records := sink.Records()
		require.Len(t, records, 2)
		assert.EqualValues(t, 1, records[0].Sequence)
		assert.EqualValues(t, 2, records[1].Sequence)
		assert.Equal(t, fixed, records[0].Time)
		assert.Equal(t, KindCreated, records[0].Event.Kind())
		assert.Equal(t, KindDestroyed, records[1].Event.Kind())
		assert.EqualValues(t, 2, emitter.Sequence())
	})
	t.Run("A failing sink does not starve the others", func(t *testing.T) {
		errBoom := errors.New("boom")
		healthy := &memorySink{}
		failing := &memorySink{err: errBoom}
		emitter := NewEmitter(healthy, failing)

		err := emitter.Emit(ctx, Created{Stake: stakeID, Amount: 1})
		require.ErrorIs(t, err, errBoom)
		assert.Len(t, healthy.Records(), 1)

		err = emitter.Close()
		require.ErrorIs(t, err, errBoom)
		assert.True(t, healthy.closed)
		assert.True(t, failing.closed)
	})
	t.Run("Concurrent emissions keep per-sink order", func(t *testing.T) {
		first := &memorySink{}
		second := &memorySink{}
		emitter := NewEmitter(first, second)

		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, emitter.Emit(ctx, Created{Stake: stakeID, Amount: 1}))
			}()
		}
		wg.Wait()

		for _, sink := range []*memorySink{first, second} {
			records := sink.Records()
			require.Len(t, records, 50)
			for i, record := range records {
				assert.EqualValues(t, i+1, record.Sequence)
			}
		}
	})
	t.Run("Discard", func(t *testing.T) {
		require.NoError(t, Discard.Emit(ctx, Created{Stake: stakeID}))
		require.NoError(t, Discard.Close())
	})
}
