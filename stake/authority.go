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

package stake

import (
	"context"

	"github.com/tochemey/lockstake/audit"
	"github.com/tochemey/lockstake/capability"
	"github.com/tochemey/lockstake/errors"
)

// AddAuthority grants the stake the credential identified by the witness type
// W. Only the package declaring W can call it. Credentials are permanent;
// there is no way to revoke one.
//
// It fails with ErrAuthorityAlreadyExists when the credential was already
// granted and ErrInvalidWitness when W can be built outside its package.
func AddAuthority[K, W any](ctx context.Context, s *Stake[K], witness W) error {
	if s == nil {
		return errors.NewOperationError(opAuthority, "", errors.ErrNilStake)
	}
	if err := s.usable(); err != nil {
		return s.fail(ctx, opAuthority, err)
	}

	authority, err := capability.Of(witness)
	if err != nil {
		return s.fail(ctx, opAuthority, err)
	}

	if s.authorities.Contains(authority) {
		return s.fail(ctx, opAuthority, errors.ErrAuthorityAlreadyExists)
	}

	s.authorities.Add(authority)

	s.rt.emit(ctx, audit.AuthorityAdded{Stake: s.id, Authority: authority})
	s.rt.metrics.AuthorityGranted(ctx)
	s.rt.logger.Debugf("stake=(%s) granted authority=(%s)", s.id, authority)
	return nil
}
