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

package abi

import (
	"io"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// lenPrefix is the size of the stream framing in front of every message.
const lenPrefix = 4

// WriteMessage writes m to a stream, prefixed with its length. The message is
// written with a single Write call, so concurrent writers must only be
// serialized, not coordinated.
func WriteMessage(w io.Writer, m *Message) error {
	b := make([]byte, lenPrefix+m.Len())
	n, err := m.SerializeTo(b[lenPrefix:])
	if err != nil {
		return err
	}
	order.PutUint32(b, uint32(n))
	if _, err := w.Write(b); err != nil {
		return serrors.Wrap("writing message", err, "op", m.Op, "id", m.ID)
	}
	return nil
}

// ReadMessage reads the next message from a stream. io.EOF is returned as is
// if the stream ends between two messages.
func ReadMessage(r io.Reader) (*Message, error) {
	var prefix [lenPrefix]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	n := order.Uint32(prefix[:])
	switch {
	case n < HdrLen:
		return nil, serrors.JoinNoStack(ErrShortMessage, nil, "len", n)
	case n > MaxMessageLen:
		return nil, serrors.JoinNoStack(ErrTooLong, nil, "len", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	var m Message
	if err := m.DecodeFromBytes(b); err != nil {
		return nil, err
	}
	return &m, nil
}
