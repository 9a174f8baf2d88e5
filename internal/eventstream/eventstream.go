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

// Package eventstream is a typed in-process topic broker. Publication is
// synchronous: when Publish returns, every active subscriber of the topic has
// the message in its mailbox, so subscribers observe publication order.
package eventstream

import (
	"github.com/tochemey/lockstake/internal/xsync"
)

// Stream defines the stream broker
type Stream[T any] interface {
	// AddSubscriber adds a subscriber
	AddSubscriber() Subscriber[T]
	// RemoveSubscriber unsubscribes the subscriber from every topic and shuts it down
	RemoveSubscriber(sub Subscriber[T])
	// SubscribersCount returns the number of subscribers for a given topic
	SubscribersCount(topic string) int
	// Subscribe subscribes a subscriber to a topic
	Subscribe(sub Subscriber[T], topic string)
	// Unsubscribe removes a subscriber from a topic
	Unsubscribe(sub Subscriber[T], topic string)
	// Publish publishes a message to a topic
	Publish(topic string, msg T)
	// Broadcast publishes the message to each of the topics
	Broadcast(msg T, topics []string)
	// Close shuts down every subscriber
	Close()
}

// EventsStream is the default Stream
type EventsStream[T any] struct {
	subscribers *xsync.Map[string, Subscriber[T]]
	topics      *xsync.Map[string, *xsync.Map[string, Subscriber[T]]]
}

// enforce a compilation error
var _ Stream[any] = (*EventsStream[any])(nil)

// New creates an instance of EventsStream
func New[T any]() *EventsStream[T] {
	return &EventsStream[T]{
		subscribers: xsync.NewMap[string, Subscriber[T]](),
		topics:      xsync.NewMap[string, *xsync.Map[string, Subscriber[T]]](),
	}
}

// AddSubscriber adds a subscriber
func (b *EventsStream[T]) AddSubscriber() Subscriber[T] {
	sub := newSubscriber[T]()
	b.subscribers.Set(sub.ID(), sub)
	return sub
}

// RemoveSubscriber removes a subscriber
func (b *EventsStream[T]) RemoveSubscriber(sub Subscriber[T]) {
	for _, topic := range sub.Topics() {
		b.Unsubscribe(sub, topic)
	}
	b.subscribers.Delete(sub.ID())
	sub.Shutdown()
}

// SubscribersCount returns the number of subscribers for a given topic
func (b *EventsStream[T]) SubscribersCount(topic string) int {
	if subscribers, ok := b.topics.Get(topic); ok {
		return subscribers.Len()
	}
	return 0
}

// Subscribe subscribes an active subscriber to a topic
func (b *EventsStream[T]) Subscribe(sub Subscriber[T], topic string) {
	if !sub.Active() {
		return
	}

	sub.subscribe(topic)
	subscribers, _ := b.topics.GetOrCompute(topic, func() (*xsync.Map[string, Subscriber[T]], error) {
		return xsync.NewMap[string, Subscriber[T]](), nil
	})
	subscribers.Set(sub.ID(), sub)
}

// Unsubscribe removes a subscriber from a topic
func (b *EventsStream[T]) Unsubscribe(sub Subscriber[T], topic string) {
	sub.unsubscribe(topic)
	if subscribers, ok := b.topics.Get(topic); ok {
		subscribers.Delete(sub.ID())
	}
}

// Publish publishes a message to a topic
func (b *EventsStream[T]) Publish(topic string, msg T) {
	subscribers, ok := b.topics.Get(topic)
	if !ok || subscribers.Len() == 0 {
		return
	}

	message := NewMessage(topic, msg)
	subscribers.Range(func(_ string, sub Subscriber[T]) {
		if sub.Active() {
			sub.signal(message)
		}
	})
}

// Broadcast publishes the message to each of the topics
func (b *EventsStream[T]) Broadcast(msg T, topics []string) {
	for _, topic := range topics {
		b.Publish(topic, msg)
	}
}

// Close closes the stream
func (b *EventsStream[T]) Close() {
	for _, sub := range b.subscribers.Values() {
		sub.Shutdown()
	}
	b.subscribers.Reset()
	b.topics.Reset()
}
