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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/ledger"
)

func TestStreamSink(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()

	t.Run("Subscriptions receive their stake records", func(t *testing.T) {
		sink := NewStreamSink()
		emitter := NewEmitter(sink)

		stakeID := testStakeID(t)
		other := ledger.NilID

		mine := sink.Subscribe(stakeID)
		all := sink.SubscribeAll()
		assert.Equal(t, 1, sink.SubscribersCount(stakeID))

		require.NoError(t, emitter.Emit(ctx, Created{Stake: stakeID, Amount: 5}))
		require.NoError(t, emitter.Emit(ctx, Created{Stake: other, Amount: 7}))
		require.NoError(t, emitter.Emit(ctx, Destroyed{Stake: stakeID, Amount: 5}))

		records := mine.Drain()
		require.Len(t, records, 2)
		assert.Equal(t, KindCreated, records[0].Event.Kind())
		assert.Equal(t, KindDestroyed, records[1].Event.Kind())

		assert.Len(t, all.Drain(), 3)

		mine.Close()
		assert.Zero(t, sink.SubscribersCount(stakeID))
		require.NoError(t, emitter.Close())
	})
	t.Run("Next waits for a record", func(t *testing.T) {
		sink := NewStreamSink()
		sub := sink.SubscribeAll()

		_, ok := sub.Next(10 * time.Millisecond)
		assert.False(t, ok)

		require.NoError(t, sink.Write(ctx, Record{Sequence: 9, Event: Created{Stake: testStakeID(t)}}))
		record, ok := sub.Next(time.Second)
		require.True(t, ok)
		assert.EqualValues(t, 9, record.Sequence)

		require.NoError(t, sink.Close())
	})
	t.Run("Closed sink rejects writes", func(t *testing.T) {
		sink := NewStreamSink()
		require.NoError(t, sink.Close())
		require.NoError(t, sink.Close())

		err := sink.Write(ctx, Record{Event: Created{}})
		assert.ErrorIs(t, err, errors.ErrSinkClosed)
	})
	t.Run("Canceled context aborts", func(t *testing.T) {
		sink := NewStreamSink()
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, sink.Write(canceled, Record{Event: Created{}}), context.Canceled)
		require.NoError(t, sink.Close())
	})
}
