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

package driver

import (
	"errors"
)

var (
	// ErrRetry is returned by BeginXmit if another goroutine holds the xmit
	// lock. The device model retries once XmitPending is called.
	ErrRetry = errors.New("xmit lock busy, retry")
	// ErrOutOfMemory is returned by AllocBuf if the send section has no room,
	// even after a drain, or if a GSO frame exceeds gso.MaxFrameLen.
	ErrOutOfMemory = errors.New("send section out of memory")
	// ErrNoBufferSpace is returned by SendBuf if not every segment of a
	// carved GSO frame could be placed.
	ErrNoBufferSpace = errors.New("no buffer space for gso segments")
	// ErrXmitNotLocked is returned by buffer operations on a Tx that no
	// longer holds the xmit lock.
	ErrXmitNotLocked = errors.New("xmit lock not held")
	// ErrNotConnected is returned by a driver that failed to join its network.
	ErrNotConnected = errors.New("not connected to network")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("driver closed")
	// ErrBufferUsed is returned for a buffer that was already sent or freed.
	ErrBufferUsed = errors.New("buffer already sent or freed")
)
