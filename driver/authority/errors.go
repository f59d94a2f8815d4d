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

package authority

import (
	"context"
	"errors"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// Errors returned by the switch authority.
var (
	ErrTimeout          = errors.New("timeout")
	ErrInterrupted      = errors.New("interrupted")
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrNoMemory         = errors.New("no memory")
	ErrBusy             = errors.New("busy")
	ErrVersion          = errors.New("version mismatch")
	ErrInternal         = errors.New("internal error")
	// ErrClosed is returned for calls on a closed connection.
	ErrClosed = errors.New("authority connection closed")
)

var statusErrors = []struct {
	status abi.Status
	err    error
}{
	{abi.StatusTimeout, ErrTimeout},
	{abi.StatusInterrupted, ErrInterrupted},
	{abi.StatusInvalidHandle, ErrInvalidHandle},
	{abi.StatusInvalidParameter, ErrInvalidParameter},
	{abi.StatusNotFound, ErrNotFound},
	{abi.StatusAccessDenied, ErrAccessDenied},
	{abi.StatusNoMemory, ErrNoMemory},
	{abi.StatusBusy, ErrBusy},
	{abi.StatusVersionMismatch, ErrVersion},
	{abi.StatusInternal, ErrInternal},
}

// FromStatus maps a reply status to an error. StatusOK maps to nil.
func FromStatus(s abi.Status) error {
	if s == abi.StatusOK {
		return nil
	}
	for _, se := range statusErrors {
		if se.status == s {
			return se.err
		}
	}
	return serrors.JoinNoStack(ErrInternal, nil, "status", s)
}

// ToStatus maps an error to the reply status sent to the peer.
func ToStatus(err error) abi.Status {
	if err == nil {
		return abi.StatusOK
	}
	for _, se := range statusErrors {
		if errors.Is(err, se.err) {
			return se.status
		}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return abi.StatusTimeout
	case errors.Is(err, context.Canceled):
		return abi.StatusInterrupted
	case errors.Is(err, abi.ErrBadValue), errors.Is(err, abi.ErrShortMessage):
		return abi.StatusInvalidParameter
	case errors.Is(err, abi.ErrBadVersion):
		return abi.StatusVersionMismatch
	}
	return abi.StatusInternal
}
