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

// Package capability turns witness values into unforgeable proofs of identity.
//
// A witness is a value of a zero-size struct type that the owning package
// declares unexported:
//
//	package rewards
//
//	type witness struct{}
//
// No other package can name the type, so no other package can produce a value
// of it. Passing such a value to a stake operation proves that the caller is
// the declaring package, without any central registry. The identifier of the
// witness type keys the extension storage or credential it unlocks.
//
// Types that other packages could construct (exported names, predeclared
// types, type literals) or that carry data are rejected with
// errors.ErrInvalidWitness.
package capability

import (
	"fmt"
	"go/token"
	"reflect"

	"github.com/tochemey/lockstake/errors"
	"github.com/tochemey/lockstake/internal/validation"
	"github.com/tochemey/lockstake/internal/xsync"
	"github.com/tochemey/lockstake/typeid"
)

var verified = xsync.NewMap[reflect.Type, verdict]()

type verdict struct {
	id  typeid.ID
	err error
}

// Verify checks that W is a valid witness type and returns its identifier.
func Verify[W any]() (typeid.ID, error) {
	return verify(reflect.TypeFor[W]())
}

// Of returns the identifier proven by the given witness value.
func Of[W any](W) (typeid.ID, error) {
	return Verify[W]()
}

func verify(rtype reflect.Type) (typeid.ID, error) {
	result, _ := verified.GetOrCompute(rtype, func() (verdict, error) {
		if err := check(rtype); err != nil {
			return verdict{err: err}, nil
		}
		return verdict{id: typeid.FromType(rtype)}, nil
	})
	return result.id, result.err
}

func check(rtype reflect.Type) error {
	if rtype == nil {
		return fmt.Errorf("%w: interface types cannot be witnesses", errors.ErrInvalidWitness)
	}

	named := rtype.Name() != "" && rtype.PkgPath() != ""
	violations := validation.New(validation.AllErrors()).
		AddAssertion(rtype.Kind() == reflect.Struct, "witness must be a struct type").
		AddAssertion(rtype.Size() == 0, "witness must not carry data").
		AddAssertion(named, "witness must be a named type declared in a package").
		AddAssertion(!named || !token.IsExported(rtype.Name()), "witness type must be unexported").
		Validate()

	if violations != nil {
		return fmt.Errorf("%w (%s): %v", errors.ErrInvalidWitness, rtype.String(), violations)
	}
	return nil
}
