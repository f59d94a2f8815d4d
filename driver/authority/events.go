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
	"sync"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
)

// EventQueueLen is the capacity of the event channel of one handle. Events
// beyond it are dropped.
const EventQueueLen = 16

// EventMux fans events out to one channel per handle, so that interfaces
// sharing a connection each see only their own events. The zero value is
// ready to use.
type EventMux struct {
	mu     sync.Mutex
	subs   map[abi.Handle]chan Event
	closed bool
}

// Subscribe returns the event channel of h, creating it if needed. After
// Close it returns a closed channel.
func (m *EventMux) Subscribe(h abi.Handle) <-chan Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sub(h)
}

func (m *EventMux) sub(h abi.Handle) chan Event {
	if ch, ok := m.subs[h]; ok {
		return ch
	}
	ch := make(chan Event, EventQueueLen)
	if m.closed {
		close(ch)
		return ch
	}
	if m.subs == nil {
		m.subs = make(map[abi.Handle]chan Event)
	}
	m.subs[h] = ch
	return ch
}

// Publish queues ev on the channel of ev.Handle without blocking. It
// returns false if the event was dropped because nobody subscribed to the
// handle or its queue is full. Owners subscribe when the handle is opened,
// so that no event is lost before the reader starts.
func (m *EventMux) Publish(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch, ok := m.subs[ev.Handle]
	if !ok {
		return false
	}
	select {
	case ch <- ev:
		return true
	default:
		return false
	}
}

// Remove closes the channel of h. A later Subscribe for h starts a new
// channel.
func (m *EventMux) Remove(h abi.Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.subs[h]; ok {
		close(ch)
		delete(m.subs, h)
	}
}

// Close closes every channel.
func (m *EventMux) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for h, ch := range m.subs {
		close(ch)
		delete(m.subs, h)
	}
}
