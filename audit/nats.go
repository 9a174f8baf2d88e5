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
	"fmt"
	"regexp"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/nats-io/nats.go"
	"go.uber.org/atomic"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/validation"
)

var subjectPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.[A-Za-z0-9_-]+)*$`)

// NATSConfig configures the NATS sink
type NATSConfig struct {
	// NatsServer defines the nats server in the format nats://host:port
	NatsServer string
	// Subject is the subject prefix; records of a stake go to <Subject>.<stake id>
	Subject string
	// ClientName names the connection on the server
	ClientName string
	// ReconnectWait is the wait between reconnect attempts. Defaults to 2s.
	ReconnectWait time.Duration
}

// Validate checks whether the given configuration is valid
func (x NATSConfig) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("NatsServer", x.NatsServer)).
		AddValidator(validation.NewEmptyStringValidator("Subject", x.Subject)).
		AddValidator(validation.NewPatternValidator("Subject", subjectPattern, x.Subject)).
		AddValidator(validation.NewEmptyStringValidator("ClientName", x.ClientName)).
		Validate()
}

// NATSSink publishes CBOR encoded records on NATS
type NATSSink struct {
	conn    *nats.Conn
	subject string
	closed  *atomic.Bool
}

var _ Sink = (*NATSSink)(nil)

// NewNATSSink connects to the NATS server using an exponential backoff
func NewNATSSink(config NATSConfig) (*NATSSink, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts := nats.GetDefaultOptions()
	opts.Url = config.NatsServer
	opts.Name = config.ClientName
	opts.ReconnectWait = config.ReconnectWait
	if opts.ReconnectWait <= 0 {
		opts.ReconnectWait = 2 * time.Second
	}
	opts.MaxReconnect = -1

	const maxRetries = 5

	var conn *nats.Conn
	retrier := retry.NewRetrier(maxRetries, 100*time.Millisecond, opts.ReconnectWait)
	err := retrier.Run(func() error {
		var err error
		conn, err = opts.Connect()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("audit: connecting to nats at %s: %w", config.NatsServer, err)
	}

	return &NATSSink{
		conn:    conn,
		subject: config.Subject,
		closed:  atomic.NewBool(false),
	}, nil
}

// Write implements Sink
func (s *NATSSink) Write(ctx context.Context, record Record) error {
	if s.closed.Load() {
		return errors.ErrSinkClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Marshal(record)
	if err != nil {
		return err
	}
	return s.conn.Publish(s.Subject(record), data)
}

// Subject returns the subject a record is published on
func (s *NATSSink) Subject(record Record) string {
	return s.subject + "." + record.StakeID().String()
}

// Close flushes pending records and closes the connection
func (s *NATSSink) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	err := s.conn.Flush()
	s.conn.Close()
	return err
}
