// Copyright 2026 The intnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package authority_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

func TestStatusMapping(t *testing.T) {
	statuses := []abi.Status{
		abi.StatusTimeout,
		abi.StatusInterrupted,
		abi.StatusInvalidHandle,
		abi.StatusInvalidParameter,
		abi.StatusNotFound,
		abi.StatusAccessDenied,
		abi.StatusNoMemory,
		abi.StatusBusy,
		abi.StatusVersionMismatch,
		abi.StatusInternal,
	}
	for _, s := range statuses {
		t.Run(s.String(), func(t *testing.T) {
			err := authority.FromStatus(s)
			assert.Error(t, err)
			assert.Equal(t, s, authority.ToStatus(err))
			wrapped := serrors.Wrap("wrapped", err, "handle", 1)
			assert.Equal(t, s, authority.ToStatus(wrapped))
		})
	}
	assert.NoError(t, authority.FromStatus(abi.StatusOK))
	assert.Equal(t, abi.StatusOK, authority.ToStatus(nil))
}

func TestToStatus(t *testing.T) {
	tests := map[string]struct {
		err  error
		want abi.Status
	}{
		"deadline":    {err: context.DeadlineExceeded, want: abi.StatusTimeout},
		"canceled":    {err: context.Canceled, want: abi.StatusInterrupted},
		"bad value":   {err: abi.ErrBadValue, want: abi.StatusInvalidParameter},
		"short":       {err: abi.ErrShortMessage, want: abi.StatusInvalidParameter},
		"bad version": {err: abi.ErrBadVersion, want: abi.StatusVersionMismatch},
		"other":       {err: serrors.New("boom"), want: abi.StatusInternal},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, authority.ToStatus(tc.err))
		})
	}
}
