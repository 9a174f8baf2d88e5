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
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/tochemey/lockstake/ledger"
)

// Record is an Event stamped by an Emitter
type Record struct {
	// Sequence increases by one for every record an Emitter produces
	Sequence uint64
	// Time is the emission time
	Time time.Time
	// Event is the state change
	Event Event
}

// StakeID returns the identity of the stake the record is about
func (r Record) StakeID() ledger.ID {
	if r.Event == nil {
		return ledger.NilID
	}
	return r.Event.StakeID()
}

// envelope is the wire form of a Record
type envelope struct {
	Sequence uint64          `cbor:"1,keyasint"`
	Time     time.Time       `cbor:"2,keyasint"`
	Kind     Kind            `cbor:"3,keyasint"`
	Payload  cbor.RawMessage `cbor:"4,keyasint"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(err)
	}

	decMode, err = cbor.DecOptions{
		MaxNestedLevels: 16,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8RejectInvalid,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes a record in CBOR
func Marshal(record Record) ([]byte, error) {
	if record.Event == nil {
		return nil, fmt.Errorf("audit: record %d carries no event", record.Sequence)
	}

	payload, err := encMode.Marshal(record.Event)
	if err != nil {
		return nil, fmt.Errorf("audit: encoding %s event: %w", record.Event.Kind(), err)
	}

	return encMode.Marshal(envelope{
		Sequence: record.Sequence,
		Time:     record.Time,
		Kind:     record.Event.Kind(),
		Payload:  payload,
	})
}

// Unmarshal decodes a record produced by Marshal
func Unmarshal(data []byte) (Record, error) {
	var env envelope
	if err := decMode.Unmarshal(data, &env); err != nil {
		return Record{}, fmt.Errorf("audit: decoding record: %w", err)
	}

	event, err := decodeEvent(env.Kind, env.Payload)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Sequence: env.Sequence,
		Time:     env.Time,
		Event:    event,
	}, nil
}

func decodeEvent(kind Kind, payload []byte) (Event, error) {
	switch kind {
	case KindCreated:
		return decodeAs[Created](kind, payload)
	case KindDestroyed:
		return decodeAs[Destroyed](kind, payload)
	case KindAuthorityAdded:
		return decodeAs[AuthorityAdded](kind, payload)
	case KindExtensionInstalled:
		return decodeAs[ExtensionInstalled](kind, payload)
	case KindExtensionRemoved:
		return decodeAs[ExtensionRemoved](kind, payload)
	default:
		return nil, fmt.Errorf("audit: unknown event kind %q", kind)
	}
}

func decodeAs[E Event](kind Kind, payload []byte) (Event, error) {
	var event E
	if err := decMode.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("audit: decoding %s event: %w", kind, err)
	}
	return event, nil
}
