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

package tap_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/gso/gsotest"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/log/testlog"
	"github.com/intnet-dev/intnet/private/tap"
	"github.com/intnet-dev/intnet/private/tap/mock_tap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// sink records the frames sent under a mock transmitter.
type sink struct {
	mu     sync.Mutex
	frames [][]byte
	sent   chan struct{}
}

var _ driver.Buffers = (*sink)(nil)

func (s *sink) AllocBuf(n int, desc *gso.Descriptor) (*driver.SGBuf, error) {
	return &driver.SGBuf{Data: make([]byte, n), Gso: desc}, nil
}

func (s *sink) FreeBuf(*driver.SGBuf) error { return nil }

func (s *sink) SendBuf(b *driver.SGBuf, _ bool) error {
	s.mu.Lock()
	s.frames = append(s.frames, b.Data)
	s.mu.Unlock()
	s.sent <- struct{}{}
	return nil
}

// run passes s to the callback of an Xmit call.
func (s *sink) run(_ bool, fn func(driver.Buffers) error) error {
	return fn(s)
}

func start(t *testing.T, x tap.Transmitter) (*tap.Device, net.Conn) {
	t.Helper()
	local, remote := net.Pipe()
	ctx, cancel := context.WithCancel(log.CtxWith(context.Background(), testlog.NewLogger(t)))
	dev := tap.NewDevice(ctx, local, "tap0")
	done := make(chan error, 1)
	go func() { done <- dev.Run(ctx, x) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		remote.Close()
	})
	return dev, remote
}

func waitSent(t *testing.T, s *sink) {
	t.Helper()
	select {
	case <-s.sent:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for transmit")
	}
}

func TestRunTransmits(t *testing.T) {
	ctrl := gomock.NewController(t)
	x := mock_tap.NewMockTransmitter(ctrl)
	s := &sink{sent: make(chan struct{}, 8)}
	x.EXPECT().Xmit(false, gomock.Any()).AnyTimes().DoAndReturn(s.run)
	dev, remote := start(t, x)

	frames := [][]byte{
		gsotest.Ethernet(t, gsotest.SrcMAC, gsotest.DstMAC, gsotest.Payload(100)),
		gsotest.Ethernet(t, gsotest.SrcMAC, gsotest.DstMAC, gsotest.Payload(1500)),
	}
	for _, f := range frames {
		_, err := remote.Write(f)
		require.NoError(t, err)
		waitSent(t, s)
	}
	s.mu.Lock()
	assert.Equal(t, frames, s.frames)
	s.mu.Unlock()
	assert.Equal(t, tap.Stats{}, dev.Stats())
}

func TestRunRetriesBusyLock(t *testing.T) {
	ctrl := gomock.NewController(t)
	x := mock_tap.NewMockTransmitter(ctrl)
	s := &sink{sent: make(chan struct{}, 8)}
	var dev *tap.Device
	gomock.InOrder(
		x.EXPECT().Xmit(false, gomock.Any()).Times(2).DoAndReturn(
			func(bool, func(driver.Buffers) error) error {
				dev.XmitPending()
				return driver.ErrRetry
			},
		),
		x.EXPECT().Xmit(false, gomock.Any()).DoAndReturn(s.run),
	)
	dev, remote := start(t, x)

	_, err := remote.Write(gsotest.Ethernet(t, gsotest.SrcMAC, gsotest.DstMAC, nil))
	require.NoError(t, err)
	waitSent(t, s)
	assert.Equal(t, tap.Stats{}, dev.Stats())
}

func TestRunDropsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	x := mock_tap.NewMockTransmitter(ctrl)
	dropped := make(chan struct{}, 1)
	x.EXPECT().Xmit(false, gomock.Any()).DoAndReturn(
		func(bool, func(driver.Buffers) error) error {
			dropped <- struct{}{}
			return driver.ErrOutOfMemory
		},
	)
	dev, remote := start(t, x)

	_, err := remote.Write(gsotest.Ethernet(t, gsotest.SrcMAC, gsotest.DstMAC, nil))
	require.NoError(t, err)
	<-dropped
	require.Eventually(t, func() bool {
		return dev.Stats().TxDropped == 1
	}, 5*time.Second, time.Millisecond)
}

func TestReceive(t *testing.T) {
	ctrl := gomock.NewController(t)
	dev, remote := start(t, mock_tap.NewMockTransmitter(ctrl))
	frame := gsotest.Ethernet(t, gsotest.DstMAC, gsotest.SrcMAC, gsotest.Payload(60))

	errs := make(chan error, 1)
	go func() { errs <- dev.Receive(frame) }()
	buf := make([]byte, 2048)
	n, err := remote.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, frame, buf[:n])
	assert.NoError(t, <-errs)
	assert.NoError(t, dev.WaitReceiveAvail(0))

	remote.Close()
	assert.Error(t, dev.Receive(frame))
	assert.Equal(t, uint64(1), dev.Stats().RxErrors)
}
