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

package config

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/multierr"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/log"
	"github.com/tochemey/lockstake/stake"
)

// Stack is a runtime built from a Config together with the sinks that can be
// queried directly
type Stack struct {
	// Runtime hosts the stakes
	Runtime *stake.Runtime
	// Stream is set when the stream sink is enabled
	Stream *audit.StreamSink
	// Journal is set when the journal is enabled
	Journal *audit.Journal
	// Logger is the logger handed to the runtime
	Logger log.Logger
}

// Close closes the runtime, its sinks and its ledger, then flushes the logger
func (s *Stack) Close() error {
	return multierr.Combine(s.Runtime.Close(), s.Logger.Flush())
}

// Build assembles a runtime from the configuration. On failure every
// component opened so far is closed again.
func Build(ctx context.Context, cfg *Config) (stack *Stack, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.NewZap(level, os.Stdout)

	var closers []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	l, err := newLedger(ctx, cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, l.Close)

	stack = &Stack{Logger: logger}
	var sinks []audit.Sink

	if cfg.Audit.Stream {
		stack.Stream = audit.NewStreamSink()
		sinks = append(sinks, stack.Stream)
		closers = append(closers, stack.Stream.Close)
	}

	if cfg.Audit.Journal {
		journal, err := audit.NewJournal(cfg.Audit.JournalDir)
		if err != nil {
			return nil, err
		}
		stack.Journal = journal
		sinks = append(sinks, journal)
		closers = append(closers, journal.Close)
	}

	if cfg.Audit.NATS.Enabled {
		sink, err := audit.NewNATSSink(cfg.natsConfig())
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
		closers = append(closers, sink.Close)
	}

	var emitter audit.Emitter = audit.Discard
	if len(sinks) > 0 {
		emitter = audit.NewEmitter(sinks...)
	}

	var meterProvider metric.MeterProvider = noop.NewMeterProvider()
	if cfg.Metrics.Enabled {
		meterProvider = otel.GetMeterProvider()
	}

	rt, err := stake.NewRuntime(
		stake.WithLedger(l),
		stake.WithEmitter(emitter),
		stake.WithLogger(logger),
		stake.WithMeterProvider(meterProvider),
	)
	if err != nil {
		return nil, err
	}
	stack.Runtime = rt

	logger.Infof("stake runtime ready with ledger=(%s) and %d audit sink(s)", cfg.Ledger.Backend, len(sinks))
	return stack, nil
}

func newLedger(ctx context.Context, cfg *Config) (ledger.Ledger, error) {
	switch cfg.Ledger.Backend {
	case BackendBolt:
		return ledger.NewBolt(cfg.Ledger.Path)
	case BackendRedis:
		return ledger.NewRedis(ctx, cfg.redisConfig())
	default:
		return ledger.NewMemory(), nil
	}
}
