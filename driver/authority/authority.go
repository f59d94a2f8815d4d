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

// Package authority is the driver side of the switch authority. The switch
// authority owns the ring buffers of all interfaces and delivers frames
// between them. The driver only issues requests to it and consumes its
// notifications.
package authority

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
)

// Authority is the interface to the switch authority. All calls are
// synchronous round trips. Wait returns nil when the Recv section of the
// interface may hold new records, ErrTimeout when the timeout expired and
// ErrInterrupted when the wait was aborted.
type Authority interface {
	Open(ctx context.Context, req abi.OpenRequest) (abi.OpenReply, error)
	Close(ctx context.Context, h abi.Handle) error
	// Send asks the switch to process the committed records of the Send
	// section of h.
	Send(ctx context.Context, h abi.Handle) error
	Wait(ctx context.Context, h abi.Handle, timeout time.Duration) error
	AbortWait(ctx context.Context, h abi.Handle) error
	SetPromiscuous(ctx context.Context, h abi.Handle, on bool) error
	SetActive(ctx context.Context, h abi.Handle, active bool) error
	SetMacAddress(ctx context.Context, h abi.Handle, mac net.HardwareAddr) error
	// MapBufferPointers maps the ring buffer of h into the caller. The mapping
	// is released when h is closed.
	MapBufferPointers(ctx context.Context, h abi.Handle) (*ring.Buffer, error)
	// Events returns the notifications of the switch about h. The channel
	// is closed when h is closed or the authority connection ends.
	Events(h abi.Handle) <-chan Event
}

// EventKind is the kind of an authority event.
type EventKind int

const (
	// LinkChanged reports the switch side link state.
	LinkChanged EventKind = iota + 1
	// DeviceChanged reports changed switch capabilities.
	DeviceChanged
)

func (k EventKind) String() string {
	switch k {
	case LinkChanged:
		return "link_changed"
	case DeviceChanged:
		return "device_changed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a notification of the switch authority about one interface.
type Event struct {
	Kind   EventKind
	Handle abi.Handle
	// LinkUp is the switch side link state of a LinkChanged event.
	LinkUp bool
	// GsoCapable is the GSO capability of a DeviceChanged event.
	GsoCapable bool
}

// EventFromNotification converts a notification message.
func EventFromNotification(h abi.Handle, n abi.Notification) Event {
	e := Event{Handle: h, LinkUp: n.LinkUp, GsoCapable: n.GsoCapable}
	switch n.Kind {
	case abi.NotifyLinkChanged:
		e.Kind = LinkChanged
	case abi.NotifyDeviceChanged:
		e.Kind = DeviceChanged
	}
	return e
}

// Notification converts the event into its wire form.
func (e Event) Notification() abi.Notification {
	n := abi.Notification{LinkUp: e.LinkUp, GsoCapable: e.GsoCapable}
	switch e.Kind {
	case LinkChanged:
		n.Kind = abi.NotifyLinkChanged
	case DeviceChanged:
		n.Kind = abi.NotifyDeviceChanged
	}
	return n
}
