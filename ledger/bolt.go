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
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/atomic"

	"github.com/tochemey/lockstake/errors"
)

const (
	boltFileMode os.FileMode = 0o600
)

var (
	boltLiveBucket     = []byte("live")
	boltReleasedBucket = []byte("released")
	boltTimeout        = 5 * time.Second
)

// Bolt is a Ledger persisted in a bbolt file. Live identities and tombstones
// survive restarts, so an identity released before a restart is still never
// handed out again.
//
// bbolt provides single-writer/multi-reader semantics; every mutation runs in
// its own write transaction.
type Bolt struct {
	db     *bbolt.DB
	closed *atomic.Bool
}

var _ Ledger = (*Bolt)(nil)

// NewBolt opens (or creates) the ledger file at path
func NewBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, boltFileMode, &bbolt.Options{Timeout: boltTimeout})
	if err != nil {
		return nil, fmt.Errorf("ledger: opening boltdb: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(boltLiveBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(boltReleasedBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ledger: initializing boltdb buckets: %w", err)
	}

	return &Bolt{db: db, closed: atomic.NewBool(false)}, nil
}

// Allocate implements Ledger
func (b *Bolt) Allocate(ctx context.Context) (ID, error) {
	if err := b.ready(ctx); err != nil {
		return NilID, err
	}

	var allocated ID
	err := b.db.Update(func(tx *bbolt.Tx) error {
		live := tx.Bucket(boltLiveBucket)
		released := tx.Bucket(boltReleasedBucket)
		for {
			id := newID()
			key := id[:]
			if live.Get(key) != nil || released.Get(key) != nil {
				continue
			}
			allocated = id
			return live.Put(key, timestamp())
		}
	})
	if err != nil {
		return NilID, fmt.Errorf("ledger: allocating identity: %w", err)
	}
	return allocated, nil
}

// Release implements Ledger
func (b *Bolt) Release(ctx context.Context, id ID) error {
	if err := b.ready(ctx); err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		key := id[:]
		released := tx.Bucket(boltReleasedBucket)
		if released.Get(key) != nil {
			return errors.ErrIdentityReleased
		}
		live := tx.Bucket(boltLiveBucket)
		if live.Get(key) == nil {
			return errors.ErrIdentityNotFound
		}
		if err := live.Delete(key); err != nil {
			return err
		}
		return released.Put(key, timestamp())
	})
}

// Live implements Ledger
func (b *Bolt) Live(ctx context.Context, id ID) (bool, error) {
	if err := b.ready(ctx); err != nil {
		return false, err
	}

	var ok bool
	err := b.db.View(func(tx *bbolt.Tx) error {
		ok = tx.Bucket(boltLiveBucket).Get(id[:]) != nil
		return nil
	})
	return ok, err
}

// Close releases the bbolt file handle. The file itself is kept.
func (b *Bolt) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}

func (b *Bolt) ready(ctx context.Context) error {
	if b.closed.Load() {
		return errors.ErrLedgerClosed
	}
	return ctx.Err()
}

func timestamp() []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(time.Now().UnixNano()))
	return buf
}
