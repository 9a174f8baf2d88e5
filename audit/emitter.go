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
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Sink receives stamped records
type Sink interface {
	// Write delivers a record. Records reach a sink in sequence order.
	Write(ctx context.Context, record Record) error
	// Close releases the sink resources
	Close() error
}

// Emitter turns events into records and delivers them
type Emitter interface {
	// Emit stamps the event and hands it over to the sinks
	Emit(ctx context.Context, event Event) error
	// Close closes every sink
	Close() error
}

// Discard drops every event
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) error { return nil }
func (discard) Close() error                      { return nil }

// FanOut is an Emitter delivering each record to all of its sinks
// concurrently. Emit returns once every sink has taken the record, so each
// sink observes records in emission order.
type FanOut struct {
	mu       sync.Mutex
	sinks    []Sink
	sequence *atomic.Uint64
	clock    func() time.Time
}

var _ Emitter = (*FanOut)(nil)

// NewEmitter creates a FanOut over the given sinks
func NewEmitter(sinks ...Sink) *FanOut {
	return &FanOut{
		sinks:    sinks,
		sequence: atomic.NewUint64(0),
		clock:    time.Now,
	}
}

// Emit implements Emitter. Sink failures are combined in the returned error;
// one failing sink does not prevent delivery to the others.
func (f *FanOut) Emit(ctx context.Context, event Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	record := Record{
		Sequence: f.sequence.Inc(),
		Time:     f.clock().UTC(),
		Event:    event,
	}

	if len(f.sinks) == 1 {
		return f.sinks[0].Write(ctx, record)
	}

	var eg errgroup.Group
	errs := make([]error, len(f.sinks))
	for i, sink := range f.sinks {
		eg.Go(func() error {
			errs[i] = sink.Write(ctx, record)
			return errs[i]
		})
	}
	_ = eg.Wait()
	return multierr.Combine(errs...)
}

// Sequence returns the sequence number of the last emitted record
func (f *FanOut) Sequence() uint64 {
	return f.sequence.Load()
}

// Close implements Emitter
func (f *FanOut) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	for _, sink := range f.sinks {
		err = multierr.Append(err, sink.Close())
	}
	return err
}
