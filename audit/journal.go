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
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/ledger"
)

const sequenceBandwidth = 128

var (
	journalSequenceKey  = []byte("seq")
	journalRecordPrefix = []byte("r/")
	journalIndexPrefix  = []byte("k/")
)

// Journal is an append-only Sink persisting records in BadgerDB so that
// indexers can replay the history of a stake. Records are CBOR encoded.
//
// Entries are laid out as
//
//	r/<position>          -> record
//	k/<stake>/<position>  -> nothing
//
// where position is the journal's own monotonic counter, so the journal keeps
// a total order across emitter restarts.
type Journal struct {
	db       *badger.DB
	sequence *badger.Sequence
	closed   *atomic.Bool
}

var _ Sink = (*Journal)(nil)

// NewJournal opens a journal in dir. An empty dir opens an in-memory journal.
func NewJournal(dir string) (*Journal, error) {
	var dbOpts badger.Options
	if dir != "" {
		dbOpts = badger.
			DefaultOptions(dir).
			WithLogger(nil)
	} else {
		dbOpts = badger.
			DefaultOptions("").
			WithInMemory(true).
			WithCompression(options.None).
			WithBlockCacheSize(0).
			WithLogger(nil)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: opening journal: %w", err)
	}

	sequence, err := db.GetSequence(journalSequenceKey, sequenceBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit: leasing journal sequence: %w", err)
	}

	return &Journal{
		db:       db,
		sequence: sequence,
		closed:   atomic.NewBool(false),
	}, nil
}

// Write implements Sink
func (j *Journal) Write(ctx context.Context, record Record) error {
	if j.closed.Load() {
		return errors.ErrSinkClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := Marshal(record)
	if err != nil {
		return err
	}

	position, err := j.sequence.Next()
	if err != nil {
		return fmt.Errorf("audit: journal position: %w", err)
	}

	return j.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recordKey(position), value); err != nil {
			return err
		}
		return txn.Set(indexKey(record.StakeID(), position), nil)
	})
}

// Events returns the records of one stake in emission order
func (j *Journal) Events(ctx context.Context, stakeID ledger.ID) ([]Record, error) {
	if j.closed.Load() {
		return nil, errors.ErrSinkClosed
	}

	prefix := indexPrefix(stakeID)
	var records []Record
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			position := it.Item().Key()[len(prefix):]
			item, err := txn.Get(slices.Concat(journalRecordPrefix, position))
			if err != nil {
				return err
			}
			record, err := decodeItem(item)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	return records, err
}

// Replay calls fn for every record in the journal in the order they were
// written. It stops at the first error fn returns.
func (j *Journal) Replay(ctx context.Context, fn func(Record) error) error {
	if j.closed.Load() {
		return errors.ErrSinkClosed
	}

	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = journalRecordPrefix

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := decodeItem(it.Item())
			if err != nil {
				return err
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close implements Sink
func (j *Journal) Close() error {
	if j.closed.Swap(true) {
		return nil
	}
	return multierr.Combine(j.sequence.Release(), j.db.Close())
}

func decodeItem(item *badger.Item) (Record, error) {
	var record Record
	err := item.Value(func(val []byte) error {
		var err error
		record, err = Unmarshal(val)
		return err
	})
	return record, err
}

func recordKey(position uint64) []byte {
	return binary.BigEndian.AppendUint64(slices.Clone(journalRecordPrefix), position)
}

func indexPrefix(stakeID ledger.ID) []byte {
	key := slices.Concat(journalIndexPrefix, stakeID[:])
	return append(key, '/')
}

func indexKey(stakeID ledger.ID, position uint64) []byte {
	return binary.BigEndian.AppendUint64(indexPrefix(stakeID), position)
}
