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

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OperationKey is the attribute carrying the name of a failed operation
const OperationKey = attribute.Key("op")

// StakeMetric groups the counters describing stake operations.
//
// Instruments:
//   - stake.created.count               (Int64Counter)
//   - stake.destroyed.count             (Int64Counter)
//   - stake.authorities.granted.count   (Int64Counter)
//   - stake.extensions.installed.count  (Int64Counter)
//   - stake.extensions.removed.count    (Int64Counter)
//   - stake.operations.failed.count     (Int64Counter, attribute op)
type StakeMetric struct {
	created            metric.Int64Counter
	destroyed          metric.Int64Counter
	authoritiesGranted metric.Int64Counter
	installed          metric.Int64Counter
	removed            metric.Int64Counter
	failed             metric.Int64Counter
}

// NewStakeMetric creates the stake instruments using the provided Meter.
// It returns an error if any instrument cannot be created.
func NewStakeMetric(meter metric.Meter) (*StakeMetric, error) {
	var instruments StakeMetric
	var err error

	if instruments.created, err = meter.Int64Counter(
		"stake.created.count",
		metric.WithDescription("Total number of stakes created"),
	); err != nil {
		return nil, err
	}

	if instruments.destroyed, err = meter.Int64Counter(
		"stake.destroyed.count",
		metric.WithDescription("Total number of stakes destroyed"),
	); err != nil {
		return nil, err
	}

	if instruments.authoritiesGranted, err = meter.Int64Counter(
		"stake.authorities.granted.count",
		metric.WithDescription("Total number of authority credentials granted"),
	); err != nil {
		return nil, err
	}

	if instruments.installed, err = meter.Int64Counter(
		"stake.extensions.installed.count",
		metric.WithDescription("Total number of extensions installed"),
	); err != nil {
		return nil, err
	}

	if instruments.removed, err = meter.Int64Counter(
		"stake.extensions.removed.count",
		metric.WithDescription("Total number of extensions uninstalled"),
	); err != nil {
		return nil, err
	}

	if instruments.failed, err = meter.Int64Counter(
		"stake.operations.failed.count",
		metric.WithDescription("Total number of stake operations that failed"),
	); err != nil {
		return nil, err
	}

	return &instruments, nil
}

// Created records a stake creation
func (x *StakeMetric) Created(ctx context.Context) {
	x.created.Add(ctx, 1)
}

// Destroyed records a stake destruction
func (x *StakeMetric) Destroyed(ctx context.Context) {
	x.destroyed.Add(ctx, 1)
}

// AuthorityGranted records a granted credential
func (x *StakeMetric) AuthorityGranted(ctx context.Context) {
	x.authoritiesGranted.Add(ctx, 1)
}

// ExtensionInstalled records an installed extension
func (x *StakeMetric) ExtensionInstalled(ctx context.Context) {
	x.installed.Add(ctx, 1)
}

// ExtensionRemoved records an uninstalled extension
func (x *StakeMetric) ExtensionRemoved(ctx context.Context) {
	x.removed.Add(ctx, 1)
}

// Failed records a failed operation
func (x *StakeMetric) Failed(ctx context.Context, op string) {
	x.failed.Add(ctx, 1, metric.WithAttributes(OperationKey.String(op)))
}
