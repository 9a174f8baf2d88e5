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

// Package audit carries the events a stake emits when its state changes and
// the sinks that deliver them to observers.
//
// Every successful state-changing operation produces exactly one Event. The
// Emitter stamps it into a Record with a sequence number and a timestamp and
// hands the Record to its sinks.
package audit

import (
	"github.com/tochemey/lockstake/ledger"
	"github.com/tochemey/lockstake/typeid"
)

// Kind names an event type
type Kind string

const (
	KindCreated            Kind = "created"
	KindDestroyed          Kind = "destroyed"
	KindAuthorityAdded     Kind = "authority_added"
	KindExtensionInstalled Kind = "extension_installed"
	KindExtensionRemoved   Kind = "extension_removed"
)

// Event is a stake state change. The set of events is closed.
type Event interface {
	// StakeID returns the identity of the stake the event is about
	StakeID() ledger.ID
	// Kind returns the event type
	Kind() Kind
	isEvent()
}

// Created is emitted when a stake is created
type Created struct {
	Stake     ledger.ID `cbor:"1,keyasint"`
	Amount    uint64    `cbor:"2,keyasint"`
	AssetKind typeid.ID `cbor:"3,keyasint"`
}

// Destroyed is emitted when a stake is destroyed and its balance handed back
type Destroyed struct {
	Stake  ledger.ID `cbor:"1,keyasint"`
	Amount uint64    `cbor:"2,keyasint"`
}

// AuthorityAdded is emitted when a credential is granted to a stake
type AuthorityAdded struct {
	Stake     ledger.ID `cbor:"1,keyasint"`
	Authority typeid.ID `cbor:"2,keyasint"`
}

// ExtensionInstalled is emitted when an extension gets its storage unit on a stake
type ExtensionInstalled struct {
	Stake     ledger.ID `cbor:"1,keyasint"`
	Extension typeid.ID `cbor:"2,keyasint"`
	Storage   ledger.ID `cbor:"3,keyasint"`
}

// ExtensionRemoved is emitted when an extension is uninstalled from a stake
type ExtensionRemoved struct {
	Stake     ledger.ID `cbor:"1,keyasint"`
	Extension typeid.ID `cbor:"2,keyasint"`
}

var (
	_ Event = Created{}
	_ Event = Destroyed{}
	_ Event = AuthorityAdded{}
	_ Event = ExtensionInstalled{}
	_ Event = ExtensionRemoved{}
)

func (e Created) StakeID() ledger.ID            { return e.Stake }
func (e Destroyed) StakeID() ledger.ID          { return e.Stake }
func (e AuthorityAdded) StakeID() ledger.ID     { return e.Stake }
func (e ExtensionInstalled) StakeID() ledger.ID { return e.Stake }
func (e ExtensionRemoved) StakeID() ledger.ID   { return e.Stake }

func (Created) Kind() Kind            { return KindCreated }
func (Destroyed) Kind() Kind          { return KindDestroyed }
func (AuthorityAdded) Kind() Kind     { return KindAuthorityAdded }
func (ExtensionInstalled) Kind() Kind { return KindExtensionInstalled }
func (ExtensionRemoved) Kind() Kind   { return KindExtensionRemoved }

func (Created) isEvent()            {}
func (Destroyed) isEvent()          {}
func (AuthorityAdded) isEvent()     {}
func (ExtensionInstalled) isEvent() {}
func (ExtensionRemoved) isEvent()   {}
