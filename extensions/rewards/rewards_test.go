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

package rewards_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/balance"
	"github.com/tochemey/lockstake/errors"
	reward "github.com/tochemey/lockstake/extensions/rewards"
	"github.com/tochemey/lockstake/stake"
	"github.com/tochemey/lockstake/typeid"
)

type gold struct{}

// rewards shares the name of the extension witness but is a different type
type rewards struct{}

func newStake(t *testing.T, rt *stake.Runtime, amount uint64) *stake.Stake[gold] {
	t.Helper()
	supply, err := balance.NewSupply(gold{})
	require.NoError(t, err)
	b, err := supply.Increase(amount)
	require.NoError(t, err)
	s, err := stake.New(context.Background(), rt, b)
	require.NoError(t, err)
	return s
}

func TestRewards(t *testing.T) {
	ctx := context.Background()
	sink := audit.NewStreamSink()
	rt, err := stake.NewRuntime(stake.WithEmitter(audit.NewEmitter(sink)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	t.Run("Registration lifecycle", func(t *testing.T) {
		s := newStake(t, rt, 100)
		events := sink.Subscribe(s.ID())
		defer events.Close()

		require.NoError(t, reward.Register(ctx, s, "alpha"))
		require.NoError(t, reward.Register(ctx, s, "beta"))
		assert.True(t, s.HasExtension(reward.ID()))
		assert.Equal(t, 1, s.ExtensionCount())

		err := reward.Register(ctx, s, "alpha")
		require.ErrorIs(t, err, errors.ErrEntryAlreadyExists)

		require.NoError(t, reward.Accrue(s, "alpha", 30))
		require.NoError(t, reward.Accrue(s, "alpha", 12))
		paid, err := reward.Claim(s, "alpha")
		require.NoError(t, err)
		assert.EqualValues(t, 42, paid)

		registration, err := reward.Lookup(s, "alpha")
		require.NoError(t, err)
		assert.Equal(t, reward.Registration{Pool: "alpha", Shares: 100, Claimed: 42}, registration)

		// the owner cannot walk away while registrations are live
		_, err = s.Destroy(ctx)
		require.ErrorIs(t, err, errors.ErrExtensionsNotEmpty)

		_, err = reward.Unregister(ctx, s, "alpha")
		require.NoError(t, err)
		assert.True(t, s.HasExtension(reward.ID()))

		_, err = reward.Unregister(ctx, s, "beta")
		require.NoError(t, err)
		assert.False(t, s.HasExtension(reward.ID()))

		released, err := s.Destroy(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 100, released.Value())

		var kinds []audit.Kind
		for _, record := range events.Drain() {
			kinds = append(kinds, record.Event.Kind())
		}
		assert.Equal(t, []audit.Kind{
			audit.KindExtensionInstalled,
			audit.KindExtensionRemoved,
			audit.KindDestroyed,
		}, kinds)
	})
	t.Run("Accrual overflow leaves the registration unchanged", func(t *testing.T) {
		s := newStake(t, rt, 1)
		require.NoError(t, reward.Register(ctx, s, "alpha"))
		require.NoError(t, reward.Accrue(s, "alpha", ^uint64(0)))

		err := reward.Accrue(s, "alpha", 1)
		require.ErrorIs(t, err, errors.ErrBalanceOverflow)

		registration, err := reward.Lookup(s, "alpha")
		require.NoError(t, err)
		assert.Equal(t, ^uint64(0), registration.Accrued)
	})
	t.Run("Unregistered stakes", func(t *testing.T) {
		s := newStake(t, rt, 1)
		_, err := reward.Claim(s, "alpha")
		require.ErrorIs(t, err, errors.ErrExtensionNotInstalled)
		_, err = reward.Unregister(ctx, s, "alpha")
		require.ErrorIs(t, err, errors.ErrExtensionNotInstalled)
	})
	t.Run("With a nil stake", func(t *testing.T) {
		var s *stake.Stake[gold]
		require.NotPanics(t, func() {
			require.ErrorIs(t, reward.Register(ctx, s, "alpha"), errors.ErrNilStake)
			require.ErrorIs(t, reward.Accrue(s, "alpha", 1), errors.ErrNilStake)
			_, err := reward.Claim(s, "alpha")
			require.ErrorIs(t, err, errors.ErrNilStake)
			_, err = reward.Lookup(s, "alpha")
			require.ErrorIs(t, err, errors.ErrNilStake)
			_, err = reward.Unregister(ctx, s, "alpha")
			require.ErrorIs(t, err, errors.ErrNilStake)
		})
	})
	t.Run("Other packages cannot reach the extension storage", func(t *testing.T) {
		s := newStake(t, rt, 1)
		require.NoError(t, reward.Register(ctx, s, "alpha"))

		assert.NotEqual(t, typeid.Of[rewards](), reward.ID())

		_, err := stake.Storage(s, rewards{})
		require.ErrorIs(t, err, errors.ErrExtensionNotInstalled)
		err = stake.UninstallExtension(ctx, s, rewards{})
		require.ErrorIs(t, err, errors.ErrExtensionNotInstalled)

		// installing a look-alike gets a separate unit
		require.NoError(t, stake.InstallExtension(ctx, s, rewards{}))
		unit, err := stake.StorageMut(s, rewards{})
		require.NoError(t, err)
		assert.False(t, stake.HasEntry(unit, "alpha"))
		assert.Equal(t, 2, s.ExtensionCount())

		registration, err := reward.Lookup(s, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "alpha", registration.Pool)
	})
}
