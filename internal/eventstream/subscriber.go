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

package eventstream

import (
	"time"

	"github.com/Workiva/go-datastructures/queue"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.uber.org/atomic"
)

const mailboxHint = 64

// Subscriber consumes the messages of the topics it subscribed to.
// Delivery into the mailbox follows publication order.
type Subscriber[T any] interface {
	ID() string
	Active() bool
	Topics() []string
	// Iterator drains the messages currently in the mailbox without blocking
	Iterator() chan *Message[T]
	// Receive waits up to timeout for the next message
	Receive(timeout time.Duration) (*Message[T], bool)
	Shutdown()
	signal(message *Message[T])
	subscribe(topic string)
	unsubscribe(topic string)
}

type subscriber[T any] struct {
	id       string
	messages *queue.Queue
	topics   mapset.Set[string]
	active   *atomic.Bool
}

var _ Subscriber[any] = (*subscriber[any])(nil)

func newSubscriber[T any]() *subscriber[T] {
	return &subscriber[T]{
		id:       uuid.NewString(),
		messages: queue.New(mailboxHint),
		topics:   mapset.NewSet[string](),
		active:   atomic.NewBool(true),
	}
}

// ID returns the subscriber id
func (x *subscriber[T]) ID() string {
	return x.id
}

// Active checks whether the subscriber is still receiving
func (x *subscriber[T]) Active() bool {
	return x.active.Load()
}

// Topics returns the topics the subscriber is subscribed to
func (x *subscriber[T]) Topics() []string {
	return x.topics.ToSlice()
}

// Shutdown stops the subscriber and drops pending messages
func (x *subscriber[T]) Shutdown() {
	if x.active.Swap(false) {
		x.messages.Dispose()
	}
}

// Iterator implements Subscriber
func (x *subscriber[T]) Iterator() chan *Message[T] {
	pending := x.messages.Len()
	out := make(chan *Message[T], pending)
	if x.active.Load() && pending > 0 {
		items, err := x.messages.Get(pending)
		if err == nil {
			for _, it := range items {
				if msg, ok := item[T](it); ok {
					out <- msg
				}
			}
		}
	}
	close(out)
	return out
}

// Receive implements Subscriber
func (x *subscriber[T]) Receive(timeout time.Duration) (*Message[T], bool) {
	if !x.active.Load() {
		return nil, false
	}
	items, err := x.messages.Poll(1, timeout)
	if err != nil || len(items) == 0 {
		return nil, false
	}
	msg, ok := item[T](items[0])
	return msg, ok
}

func item[T any](value any) (*Message[T], bool) {
	msg, ok := value.(*Message[T])
	return msg, ok && msg != nil
}

func (x *subscriber[T]) signal(message *Message[T]) {
	if x.active.Load() {
		// a concurrent Shutdown may dispose the mailbox; the message is dropped
		_ = x.messages.Put(message)
	}
}

func (x *subscriber[T]) subscribe(topic string) {
	x.topics.Add(topic)
}

func (x *subscriber[T]) unsubscribe(topic string) {
	x.topics.Remove(topic)
}
