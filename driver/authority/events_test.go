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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intnet-dev/intnet/driver/authority"
)

func TestEventMux(t *testing.T) {
	var m authority.EventMux
	a, b := m.Subscribe(1), m.Subscribe(2)

	assert.True(t, m.Publish(authority.Event{Kind: authority.LinkChanged, Handle: 1}))
	assert.True(t, m.Publish(authority.Event{Kind: authority.DeviceChanged, Handle: 2}))
	assert.False(t, m.Publish(authority.Event{Kind: authority.LinkChanged, Handle: 3}))
	assert.Equal(t, authority.Event{Kind: authority.LinkChanged, Handle: 1}, <-a)
	assert.Equal(t, authority.Event{Kind: authority.DeviceChanged, Handle: 2}, <-b)
	assert.Len(t, a, 0)

	for range authority.EventQueueLen {
		assert.True(t, m.Publish(authority.Event{Handle: 1}))
	}
	assert.False(t, m.Publish(authority.Event{Handle: 1}))
	assert.Len(t, b, 0)

	m.Remove(1)
	_, ok := <-a
	assert.True(t, ok, "queued events stay readable")
	assert.False(t, m.Publish(authority.Event{Handle: 1}))

	m.Close()
	_, ok = <-b
	assert.False(t, ok)
	_, ok = <-m.Subscribe(4)
	assert.False(t, ok)
}
