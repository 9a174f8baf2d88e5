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
	"go.opentelemetry.io/otel/metric"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(rt *Runtime)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Runtime)

// Apply implements Option
func (f OptionFunc) Apply(rt *Runtime) {
	f(rt)
}

// WithLedger sets the ledger allocating stake and storage identities.
// The default is an in-memory ledger.
func WithLedger(l ledger.Ledger) Option {
	return OptionFunc(func(rt *Runtime) {
		if l != nil {
			rt.ledger = l
		}
	})
}

// WithEmitter sets the audit emitter. Events are discarded by default.
func WithEmitter(emitter audit.Emitter) Option {
	return OptionFunc(func(rt *Runtime) {
		if emitter != nil {
			rt.emitter = emitter
		}
	})
}

// WithLogger sets the runtime logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider used for the stake
// instruments. The global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return OptionFunc(func(rt *Runtime) {
		rt.meterProvider = provider
	})
}
