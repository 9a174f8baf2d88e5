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
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/balance"
	"github.com/tochemey/lockstake/log"
)

// gold is the asset kind staked in tests
type gold struct{}

// witnesses of extensions and credentials declared by this test package
type (
	rewards    struct{}
	governance struct{}
	burned     struct{}
)

// Exported can be built anywhere and is no proof of anything
type Exported struct{}

// harness wires a runtime to an in-process audit stream, a manual metric
// reader and a buffered logger
type harness struct {
	rt     *Runtime
	sink   *audit.StreamSink
	events *audit.Subscription
	reader *sdkmetric.ManualReader
	logs   *bytes.Buffer
	supply *balance.Supply[gold]
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	sink := audit.NewStreamSink()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	logs := new(bytes.Buffer)

	opts = append([]Option{
		WithEmitter(audit.NewEmitter(sink)),
		WithMeterProvider(provider),
		WithLogger(log.NewZap(log.DebugLevel, logs)),
	}, opts...)

	rt, err := NewRuntime(opts...)
	require.NoError(t, err)

	supply, err := balance.NewSupply(gold{})
	require.NoError(t, err)

	h := &harness{
		rt:     rt,
		sink:   sink,
		events: sink.SubscribeAll(),
		reader: reader,
		logs:   logs,
		supply: supply,
	}

	t.Cleanup(func() {
		_ = rt.Close()
		_ = provider.Shutdown(context.Background())
	})
	return h
}

func (h *harness) mint(t *testing.T, amount uint64) *balance.Balance[gold] {
	t.Helper()
	b, err := h.supply.Increase(amount)
	require.NoError(t, err)
	return b
}

func (h *harness) stake(t *testing.T, amount uint64) *Stake[gold] {
	t.Helper()
	s, err := New(context.Background(), h.rt, h.mint(t, amount))
	require.NoError(t, err)
	return s
}

// kinds drains the audit stream and returns the kinds of the records
func (h *harness) kinds() []audit.Kind {
	var kinds []audit.Kind
	for _, record := range h.events.Drain() {
		kinds = append(kinds, record.Event.Kind())
	}
	return kinds
}

// counter returns the value of an int64 sum, optionally filtered by op
func (h *harness) counter(t *testing.T, name, op string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, h.reader.Collect(context.Background(), &rm))

	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, point := range sum.DataPoints {
				if op != "" {
					if value, ok := point.Attributes.Value("op"); !ok || value.AsString() != op {
						continue
					}
				}
				total += point.Value
			}
		}
	}
	return total
}
