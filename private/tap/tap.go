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

// Package tap connects a driver to a Linux TAP device. Frames read from the
// device are transmitted on the network, frames received from the network
// are written to the device.
package tap

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/songgao/water"
	"github.com/vishvananda/netlink"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	// maxFrameLen bounds the frames read from the device.
	maxFrameLen = 65535 + 14

	// retryInterval bounds the wait for the xmit lock if the driver does not
	// report that it is free.
	retryInterval = 10 * time.Millisecond
)

// Transmitter is the transmit side of a driver.
type Transmitter interface {
	Xmit(onWorker bool, fn func(driver.Buffers) error) error
}

var _ driver.DeviceModel = (*Device)(nil)

// Device is a frame device. It is the device model of a driver.
type Device struct {
	rw     io.ReadWriteCloser
	name   string
	logger log.Logger

	writeMu sync.Mutex
	pending chan struct{}
	closed  atomic.Bool

	rxErrors  atomic.Uint64
	txDropped atomic.Uint64
}

// Config configures a TAP device.
type Config struct {
	// Name is the device name. The kernel replaces %d with the first free
	// number.
	Name string
	// MAC is the address of the device. The kernel picks one if nil.
	MAC net.HardwareAddr
	// MTU is left to the kernel if zero.
	MTU int
}

// Open creates the TAP device and brings it up.
func Open(ctx context.Context, cfg Config) (*Device, error) {
	iface, err := water.New(water.Config{
		DeviceType:             water.TAP,
		PlatformSpecificParams: water.PlatformSpecificParams{Name: cfg.Name},
	})
	if err != nil {
		return nil, serrors.Wrap("creating tap device", err, "name", cfg.Name)
	}
	if err := setup(iface.Name(), cfg); err != nil {
		iface.Close()
		return nil, err
	}
	log.FromCtx(ctx).Debug("Created tap device", "name", iface.Name())
	return NewDevice(ctx, iface, iface.Name()), nil
}

func setup(name string, cfg Config) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return serrors.Wrap("looking up tap device", err, "name", name)
	}
	if cfg.MAC != nil {
		if err := netlink.LinkSetHardwareAddr(link, cfg.MAC); err != nil {
			return serrors.Wrap("setting tap address", err, "name", name, "mac", cfg.MAC)
		}
	}
	if cfg.MTU > 0 {
		if err := netlink.LinkSetMTU(link, cfg.MTU); err != nil {
			return serrors.Wrap("setting tap mtu", err, "name", name, "mtu", cfg.MTU)
		}
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return serrors.Wrap("bringing tap device up", err, "name", name)
	}
	return nil
}

// NewDevice wraps a frame stream. Every read must return exactly one frame.
func NewDevice(ctx context.Context, rw io.ReadWriteCloser, name string) *Device {
	return &Device{
		rw:      rw,
		name:    name,
		logger:  log.FromCtx(ctx).New("device", name),
		pending: make(chan struct{}, 1),
	}
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// WaitReceiveAvail always succeeds, writes to the device do not queue.
func (d *Device) WaitReceiveAvail(time.Duration) error {
	return nil
}

// Receive writes a frame to the device.
func (d *Device) Receive(frame []byte) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if _, err := d.rw.Write(frame); err != nil {
		d.rxErrors.Add(1)
		return serrors.Wrap("writing to device", err, "len", len(frame))
	}
	return nil
}

// XmitPending wakes Run if it waits for the xmit lock.
func (d *Device) XmitPending() {
	select {
	case d.pending <- struct{}{}:
	default:
	}
}

// Close closes the device. Run returns.
func (d *Device) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.rw.Close()
}

// Run transmits the frames read from the device until ctx is done or the
// device is closed.
func (d *Device) Run(ctx context.Context, x Transmitter) error {
	stop := context.AfterFunc(ctx, func() { d.Close() })
	defer stop()

	buf := make([]byte, maxFrameLen)
	for {
		n, err := d.rw.Read(buf)
		if err != nil {
			if d.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return serrors.Wrap("reading from device", err)
		}
		if n == 0 {
			continue
		}
		d.transmit(ctx, x, buf[:n])
	}
}

// transmit sends one frame. It retries while the xmit lock is busy and drops
// the frame on any other error.
func (d *Device) transmit(ctx context.Context, x Transmitter, frame []byte) {
	send := func(tx driver.Buffers) error {
		b, err := tx.AllocBuf(len(frame), nil)
		if err != nil {
			return err
		}
		copy(b.Data, frame)
		return tx.SendBuf(b, false)
	}
	for {
		err := x.Xmit(false, send)
		if !errors.Is(err, driver.ErrRetry) {
			if err != nil {
				d.txDropped.Add(1)
				d.logger.Debug("Dropping frame", "len", len(frame), "err", err)
			}
			return
		}
		timer := time.NewTimer(retryInterval)
		select {
		case <-d.pending:
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
		timer.Stop()
	}
}

// Stats are the counters of a device.
type Stats struct {
	RxErrors  uint64
	TxDropped uint64
}

// Stats returns a snapshot of the counters.
func (d *Device) Stats() Stats {
	return Stats{RxErrors: d.rxErrors.Load(), TxDropped: d.txDropped.Load()}
}
