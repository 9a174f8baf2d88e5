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
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/fields"
	imetric "github.com/tochemey/lockstake/internal/metric"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/log"
)

// Runtime hosts stakes. It allocates their identities, keeps the storage
// units extensions attach to them and delivers their audit events.
//
// A Runtime is safe for concurrent use across distinct stakes.
type Runtime struct {
	ledger        ledger.Ledger
	fields        *fields.Table
	emitter       audit.Emitter
	logger        log.Logger
	meterProvider metric.MeterProvider
	metrics       *imetric.StakeMetric
}

// NewRuntime creates an instance of Runtime
func NewRuntime(opts ...Option) (*Runtime, error) {
	rt := &Runtime{
		ledger:  ledger.NewMemory(),
		fields:  fields.NewTable(),
		emitter: audit.Discard,
		logger:  log.DiscardLogger,
	}

	for _, opt := range opts {
		opt.Apply(rt)
	}

	metrics, err := imetric.NewStakeMetric(imetric.NewProvider(rt.meterProvider).Meter())
	if err != nil {
		return nil, fmt.Errorf("stake: creating instruments: %w", err)
	}
	rt.metrics = metrics
	return rt, nil
}

// Ledger returns the ledger allocating identities
func (rt *Runtime) Ledger() ledger.Ledger {
	return rt.ledger
}

// Logger returns the runtime logger
func (rt *Runtime) Logger() log.Logger {
	return rt.logger
}

// Close closes the emitter and the ledger
func (rt *Runtime) Close() error {
	return multierr.Combine(rt.emitter.Close(), rt.ledger.Close())
}

// emit hands the event to the emitter. Delivery failures are logged and
// never reach the caller.
func (rt *Runtime) emit(ctx context.Context, event audit.Event) {
	if err := rt.emitter.Emit(ctx, event); err != nil {
		rt.logger.Warnf("failed to emit %s event for stake=(%s): %v", event.Kind(), event.StakeID(), err)
	}
}

// fail records the failure and wraps it with the operation context
func (rt *Runtime) fail(ctx context.Context, op string, stakeID ledger.ID, err error) error {
	rt.metrics.Failed(ctx, op)
	id := ""
	if !stakeID.IsZero() {
		id = stakeID.String()
	}
	rt.logger.Debugf("stake operation=(%s) failed for stake=(%s): %v", op, id, err)
	return errors.NewOperationError(op, id, err)
}
