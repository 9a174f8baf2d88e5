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

package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/atomic"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/validation"
)

const (
	releaseOK       = 0
	releaseNotFound = 1
	releaseTwice    = 2
)

// allocateScript claims a live key unless the identity carries a tombstone.
var allocateScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
	return 0
end
return redis.call('SETNX', KEYS[1], ARGV[2])
`)

// releaseScript moves a live identity to the tombstone set atomically.
var releaseScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[2], ARGV[1]) == 1 then
	return 2
end
if redis.call('DEL', KEYS[1]) == 0 then
	return 1
end
redis.call('SADD', KEYS[2], ARGV[1])
return 0
`)

// RedisConfig configures the redis ledger
type RedisConfig struct {
	// Addr is the redis endpoint in the host:port form
	Addr string
	// Password is optional
	Password string
	// DB selects the redis logical database
	DB int
	// KeyPrefix namespaces every key written by the ledger
	KeyPrefix string
	// ConnectRetries bounds the attempts made to reach redis at start. Defaults to 5.
	ConnectRetries int
	// MaxRetryDelay caps the backoff between connection attempts. Defaults to 2s.
	MaxRetryDelay time.Duration
}

// Validate checks the configuration
func (c *RedisConfig) Validate() error {
	return validation.New(validation.AllErrors()).
		AddValidator(validation.NewTCPAddressValidator(c.Addr)).
		AddValidator(validation.NewEmptyStringValidator("KeyPrefix", c.KeyPrefix)).
		AddAssertion(c.DB >= 0, "the [DB] must not be negative").
		AddAssertion(c.ConnectRetries >= 0, "the [ConnectRetries] must not be negative").
		Validate()
}

// Redis is a Ledger kept in redis so that several processes share one
// identity space. Live identities are plain keys, tombstones a set; both
// transitions run as server-side scripts.
type Redis struct {
	client   redis.UniversalClient
	prefix   string
	released string
	owned    bool
	closed   *atomic.Bool
}

var _ Ledger = (*Redis)(nil)

// NewRedis connects to redis and verifies the connection with an exponential
// backoff before returning the ledger.
func NewRedis(ctx context.Context, config *RedisConfig) (*Redis, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	retries := config.ConnectRetries
	if retries == 0 {
		retries = 5
	}
	maxDelay := config.MaxRetryDelay
	if maxDelay <= 0 {
		maxDelay = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	retrier := retry.NewRetrier(retries, 100*time.Millisecond, maxDelay)
	if err := retrier.RunContext(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ledger: connecting to redis at %s: %w", config.Addr, err)
	}

	ledger := NewRedisWithClient(client, config.KeyPrefix)
	ledger.owned = true
	return ledger, nil
}

// NewRedisWithClient builds the ledger on an existing client. Close leaves the
// client open.
func NewRedisWithClient(client redis.UniversalClient, keyPrefix string) *Redis {
	return &Redis{
		client:   client,
		prefix:   keyPrefix,
		released: keyPrefix + ":released",
		closed:   atomic.NewBool(false),
	}
}

// Allocate implements Ledger
func (r *Redis) Allocate(ctx context.Context) (ID, error) {
	if err := r.ready(ctx); err != nil {
		return NilID, err
	}

	for {
		id := newID()
		claimed, err := allocateScript.Run(ctx, r.client,
			[]string{r.liveKey(id), r.released},
			id.String(), time.Now().UnixNano()).Int()
		if err != nil {
			return NilID, fmt.Errorf("ledger: allocating identity: %w", err)
		}
		if claimed == 1 {
			return id, nil
		}
	}
}

// Release implements Ledger
func (r *Redis) Release(ctx context.Context, id ID) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	outcome, err := releaseScript.Run(ctx, r.client,
		[]string{r.liveKey(id), r.released},
		id.String()).Int()
	if err != nil {
		return fmt.Errorf("ledger: releasing identity %s: %w", id, err)
	}

	switch outcome {
	case releaseOK:
		return nil
	case releaseNotFound:
		return errors.ErrIdentityNotFound
	case releaseTwice:
		return errors.ErrIdentityReleased
	default:
		return fmt.Errorf("ledger: unexpected release outcome %d", outcome)
	}
}

// Live implements Ledger
func (r *Redis) Live(ctx context.Context, id ID) (bool, error) {
	if err := r.ready(ctx); err != nil {
		return false, err
	}
	count, err := r.client.Exists(ctx, r.liveKey(id)).Result()
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// Close implements Ledger. The client is closed only when the ledger created it.
func (r *Redis) Close() error {
	if r.closed.Swap(true) || !r.owned {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) liveKey(id ID) string {
	return r.prefix + ":live:" + id.String()
}

func (r *Redis) ready(ctx context.Context) error {
	if r.closed.Load() {
		return errors.ErrLedgerClosed
	}
	return ctx.Err()
}
