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

// Package typeid derives deterministic, globally comparable identifiers from Go types.
//
// A named type is identified by the full import path of its declaring package
// and its name, so two distinct named types never share an identifier and the
// same type yields the same identifier in every process. An unnamed type such as
// []T or map[K]V is identified by its type literal, which names its elements by
// package name only: []a/x.T and []b/x.T share an identifier. Capabilities are
// always named types. Identifiers are plain values:
// they can be compared with ==, used as map keys and rebuilt from their name by
// observers that cannot name the type itself.
package typeid

import (
	"cmp"
	"reflect"
	"strings"

	"github.com/zeebo/xxh3"
)

// ID identifies a Go type.
type ID struct {
	name string
	hash uint64
}

// Of returns the identifier of T.
func Of[T any]() ID {
	return FromType(reflect.TypeFor[T]())
}

// FromType returns the identifier of the given runtime type.
// Named types are identified by "<import path>.<name>"; unnamed types by their
// type literal.
func FromType(rtype reflect.Type) ID {
	if rtype == nil {
		return ID{}
	}
	return FromName(name(rtype))
}

// FromName rebuilds the identifier of a type from its canonical name as returned by ID.Name.
func FromName(name string) ID {
	name = strings.TrimSpace(name)
	if name == "" {
		return ID{}
	}
	return ID{
		name: name,
		hash: xxh3.HashString(name),
	}
}

// Name returns the canonical type name
func (id ID) Name() string {
	return id.name
}

// Hash returns the 64-bit xxh3 hash of the canonical name
func (id ID) Hash() uint64 {
	return id.hash
}

// IsZero reports whether the identifier was derived from nothing
func (id ID) IsZero() bool {
	return id.name == ""
}

// String implements fmt.Stringer
func (id ID) String() string {
	return id.name
}

// Compare orders identifiers by name. It is suitable for slices.SortFunc.
func Compare(a, b ID) int {
	return cmp.Compare(a.name, b.name)
}

func name(rtype reflect.Type) string {
	if rtype.Name() == "" || rtype.PkgPath() == "" {
		return rtype.String()
	}
	return rtype.PkgPath() + "." + rtype.Name()
}

// MarshalText encodes the identifier as its canonical name
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.name), nil
}

// UnmarshalText rebuilds the identifier from its canonical name
func (id *ID) UnmarshalText(text []byte) error {
	*id = FromName(string(text))
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (id ID) MarshalBinary() ([]byte, error) {
	return id.MarshalText()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (id *ID) UnmarshalBinary(data []byte) error {
	return id.UnmarshalText(data)
}
