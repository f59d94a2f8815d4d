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

package driver_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/log/testlog"
)

const testHandle abi.Handle = 7

type sentFrame struct {
	typ  ring.Type
	data []byte
}

// fakeAuthority is an in-memory switch with a single interface. Send
// consumes the Send section while draining is enabled.
type fakeAuthority struct {
	buf    *ring.Buffer
	events chan authority.Event
	ready  chan struct{}
	abort  chan struct{}

	mu       sync.Mutex
	openErr  error
	gso      bool
	draining bool
	sent     []sentFrame
	sends    int
	active   []bool
	promisc  []bool
	mac      net.HardwareAddr
	closed   int
	watched  []abi.Handle
}

func newFakeAuthority(t *testing.T, sendCap, recvCap int) *fakeAuthority {
	t.Helper()
	buf, err := ring.New(sendCap, recvCap)
	require.NoError(t, err)
	return &fakeAuthority{
		buf:      buf,
		events:   make(chan authority.Event, 8),
		ready:    make(chan struct{}, 1),
		abort:    make(chan struct{}, 1),
		draining: true,
	}
}

func (a *fakeAuthority) Open(_ context.Context, _ abi.OpenRequest) (abi.OpenReply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.openErr != nil {
		return abi.OpenReply{}, a.openErr
	}
	return abi.OpenReply{Handle: testHandle, GsoCapable: a.gso}, nil
}

func (a *fakeAuthority) Close(_ context.Context, _ abi.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed++
	return nil
}

func (a *fakeAuthority) Send(_ context.Context, _ abi.Handle) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sends++
	if !a.draining {
		return nil
	}
	for {
		rec, ok, err := a.buf.Send.Peek()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if rec.Type != ring.TypePadding {
			a.sent = append(a.sent, sentFrame{
				typ:  rec.Type,
				data: append([]byte(nil), rec.Frame()...),
			})
		}
		if err := a.buf.Send.Skip(); err != nil {
			return err
		}
	}
}

func (a *fakeAuthority) Wait(ctx context.Context, _ abi.Handle, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-a.ready:
		return nil
	case <-a.abort:
		return authority.ErrInterrupted
	case <-timer.C:
		return authority.ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *fakeAuthority) AbortWait(_ context.Context, _ abi.Handle) error {
	select {
	case a.abort <- struct{}{}:
	default:
	}
	return nil
}

func (a *fakeAuthority) SetPromiscuous(_ context.Context, _ abi.Handle, on bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.promisc = append(a.promisc, on)
	return nil
}

func (a *fakeAuthority) SetActive(_ context.Context, _ abi.Handle, active bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.active = append(a.active, active)
	return nil
}

func (a *fakeAuthority) SetMacAddress(_ context.Context, _ abi.Handle,
	mac net.HardwareAddr) error {

	a.mu.Lock()
	defer a.mu.Unlock()
	a.mac = mac
	return nil
}

func (a *fakeAuthority) MapBufferPointers(_ context.Context, _ abi.Handle) (*ring.Buffer, error) {
	return a.buf, nil
}

func (a *fakeAuthority) Events(h abi.Handle) <-chan authority.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.watched = append(a.watched, h)
	return a.events
}

// deliver writes a frame into the Recv section and wakes the waiter.
func (a *fakeAuthority) deliver(t *testing.T, frame []byte, d *gso.Descriptor) {
	t.Helper()
	a.mu.Lock()
	err := a.buf.Recv.Write(frame, d)
	a.mu.Unlock()
	require.NoError(t, err)
	select {
	case a.ready <- struct{}{}:
	default:
	}
}

func (a *fakeAuthority) setDraining(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.draining = on
}

func (a *fakeAuthority) sentFrames() []sentFrame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]sentFrame(nil), a.sent...)
}

func (a *fakeAuthority) activations() []bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]bool(nil), a.active...)
}

func (a *fakeAuthority) closeCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

var errNoSpace = errors.New("no receive space")

// device is a device model collecting received frames.
type device struct {
	frames   chan []byte
	full     atomic.Bool
	pending  atomic.Int32
	received atomic.Int32
	// onReceive runs after every received frame with the number of frames
	// received so far.
	onReceive func(n int)
}

func newDevice() *device {
	return &device{frames: make(chan []byte, 1024)}
}

func (d *device) WaitReceiveAvail(timeout time.Duration) error {
	if !d.full.Load() {
		return nil
	}
	if timeout > 0 {
		time.Sleep(min(timeout, 5*time.Millisecond))
	}
	return errNoSpace
}

func (d *device) Receive(frame []byte) error {
	d.frames <- append([]byte(nil), frame...)
	n := d.received.Add(1)
	if d.onReceive != nil {
		d.onReceive(int(n))
	}
	return nil
}

func (d *device) XmitPending() {
	d.pending.Add(1)
}

func (d *device) next(t *testing.T) []byte {
	t.Helper()
	select {
	case f := <-d.frames:
		return f
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for frame")
		return nil
	}
}

func (d *device) none(t *testing.T) {
	t.Helper()
	select {
	case f := <-d.frames:
		require.FailNow(t, "unexpected frame", "len %d", len(f))
	case <-time.After(50 * time.Millisecond):
	}
}

type gsoFrame struct {
	data []byte
	desc gso.Descriptor
}

// lroDevice additionally takes GSO frames in one piece.
type lroDevice struct {
	*device
	gsoFrames chan gsoFrame
}

func (d *lroDevice) ReceiveGso(frame []byte, desc gso.Descriptor) error {
	d.gsoFrames <- gsoFrame{data: append([]byte(nil), frame...), desc: desc}
	return nil
}

func testContext(t *testing.T) context.Context {
	return log.CtxWith(context.Background(), testlog.NewLogger(t))
}

// newDriver creates a driver that is closed at the end of the test.
func newDriver(t *testing.T, auth authority.Authority, dev driver.DeviceModel,
	cfg driver.Config) *driver.Driver {

	t.Helper()
	if cfg.Open.Network == "" {
		cfg.Open = abi.OpenRequest{Network: "test", SendSize: 4096, RecvSize: 4096}
	}
	if cfg.RecvWaitSlice == 0 {
		cfg.RecvWaitSlice = 10 * time.Millisecond
	}
	d, err := driver.New(testContext(t), auth, dev, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

// sendFrame transmits frame in one xmit round.
func sendFrame(d *driver.Driver, frame []byte, desc *gso.Descriptor) error {
	return d.Xmit(false, func(tx driver.Buffers) error {
		b, err := tx.AllocBuf(len(frame), desc)
		if err != nil {
			return err
		}
		copy(b.Data, frame)
		return tx.SendBuf(b, false)
	})
}
