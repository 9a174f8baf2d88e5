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
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/eventstream"
	"github.com/tochemey/lockstake/ledger"
)

// GlobalTopic receives the records of every stake
const GlobalTopic = "stakes"

// StreamSink publishes records in-process. Each record goes to GlobalTopic and
// to the topic named after its stake identity.
type StreamSink struct {
	stream eventstream.Stream[Record]
	closed *atomic.Bool
}

var _ Sink = (*StreamSink)(nil)

// NewStreamSink creates an instance of StreamSink
func NewStreamSink() *StreamSink {
	return &StreamSink{
		stream: eventstream.New[Record](),
		closed: atomic.NewBool(false),
	}
}

// Write implements Sink
func (s *StreamSink) Write(ctx context.Context, record Record) error {
	if s.closed.Load() {
		return errors.ErrSinkClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.stream.Broadcast(record, []string{GlobalTopic, record.StakeID().String()})
	return nil
}

// Subscribe returns a subscription to the records of one stake
func (s *StreamSink) Subscribe(stakeID ledger.ID) *Subscription {
	return s.subscribe(stakeID.String())
}

// SubscribeAll returns a subscription to the records of every stake
func (s *StreamSink) SubscribeAll() *Subscription {
	return s.subscribe(GlobalTopic)
}

// SubscribersCount returns the number of subscriptions to one stake
func (s *StreamSink) SubscribersCount(stakeID ledger.ID) int {
	return s.stream.SubscribersCount(stakeID.String())
}

// Close implements Sink. Open subscriptions stop receiving.
func (s *StreamSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.stream.Close()
	return nil
}

func (s *StreamSink) subscribe(topic string) *Subscription {
	sub := s.stream.AddSubscriber()
	s.stream.Subscribe(sub, topic)
	return &Subscription{stream: s.stream, subscriber: sub}
}

// Subscription receives the records published on a StreamSink
type Subscription struct {
	stream     eventstream.Stream[Record]
	subscriber eventstream.Subscriber[Record]
}

// Drain returns the records received so far without blocking
func (s *Subscription) Drain() []Record {
	var records []Record
	for msg := range s.subscriber.Iterator() {
		records = append(records, msg.Payload())
	}
	return records
}

// Next waits up to timeout for the next record
func (s *Subscription) Next(timeout time.Duration) (Record, bool) {
	msg, ok := s.subscriber.Receive(timeout)
	if !ok {
		return Record{}, false
	}
	return msg.Payload(), true
}

// Close ends the subscription
func (s *Subscription) Close() {
	s.stream.RemoveSubscriber(s.subscriber)
}
