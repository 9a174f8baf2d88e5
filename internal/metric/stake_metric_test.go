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

package metric

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestStakeMetric(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	instruments, err := NewStakeMetric(NewProvider(provider).Meter())
	require.NoError(t, err)

	instruments.Created(ctx)
	instruments.Created(ctx)
	instruments.Destroyed(ctx)
	instruments.AuthorityGranted(ctx)
	instruments.ExtensionInstalled(ctx)
	instruments.ExtensionRemoved(ctx)
	instruments.Failed(ctx, "uninstall")
	instruments.Failed(ctx, "uninstall")
	instruments.Failed(ctx, "create")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := collectSums(t, rm)
	assert.EqualValues(t, 2, total(sums["stake.created.count"]))
	assert.EqualValues(t, 1, total(sums["stake.destroyed.count"]))
	assert.EqualValues(t, 1, total(sums["stake.authorities.granted.count"]))
	assert.EqualValues(t, 1, total(sums["stake.extensions.installed.count"]))
	assert.EqualValues(t, 1, total(sums["stake.extensions.removed.count"]))

	failed := sums["stake.operations.failed.count"]
	require.Len(t, failed.DataPoints, 2)
	for _, point := range failed.DataPoints {
		op, ok := point.Attributes.Value(OperationKey)
		require.True(t, ok)
		switch op.AsString() {
		case "uninstall":
			assert.EqualValues(t, 2, point.Value)
		case "create":
			assert.EqualValues(t, 1, point.Value)
		default:
			t.Fatalf("unexpected op attribute %q", op.AsString())
		}
	}
}

func TestStakeMetricErrors(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")
	baseMeter := noop.NewMeterProvider().Meter("test")

	names := []string{
		"stake.created.count",
		"stake.destroyed.count",
		"stake.authorities.granted.count",
		"stake.extensions.installed.count",
		"stake.extensions.removed.count",
		"stake.operations.failed.count",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			meter := failingMeter{Meter: baseMeter, fail: name, err: errBoom}
			instruments, err := NewStakeMetric(meter)
			require.ErrorIs(t, err, errBoom)
			require.Nil(t, instruments)
		})
	}
}

func TestProvider(t *testing.T) {
	t.Run("With explicit provider", func(t *testing.T) {
		provider := noop.NewMeterProvider()
		p := NewProvider(provider)
		require.NotNil(t, p.Meter())
		assert.Equal(t, provider, p.meterProvider)
	})
	t.Run("With global fallback", func(t *testing.T) {
		p := NewProvider(nil)
		require.NotNil(t, p.Meter())
		assert.Equal(t, otel.GetMeterProvider(), p.meterProvider)
	})
}

type failingMeter struct {
	metric.Meter
	fail string
	err  error
}

func (m failingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == m.fail {
		return nil, m.err
	}
	return m.Meter.Int64Counter(name, options...)
}

func collectSums(t *testing.T, rm metricdata.ResourceMetrics) map[string]metricdata.Sum[int64] {
	t.Helper()
	sums := make(map[string]metricdata.Sum[int64])
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", m.Name)
			sums[m.Name] = sum
		}
	}
	return sums
}

func total(sum metricdata.Sum[int64]) int64 {
	var value int64
	for _, point := range sum.DataPoints {
		value += point.Value
	}
	return value
}

