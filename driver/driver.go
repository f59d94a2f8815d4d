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

// Package driver connects a virtual NIC device model to an internal network.
//
// The device model transmits by taking the xmit lock, allocating a buffer in
// the Send section of the shared ring buffer, filling it and sending it:
//
//	err := d.Xmit(false, func(tx driver.Buffers) error {
//		b, err := tx.AllocBuf(len(frame), nil)
//		if err != nil {
//			return err
//		}
//		copy(b.Data, frame)
//		return tx.SendBuf(b, false)
//	})
//
// The switch authority moves committed frames into the Recv sections of the
// peers. A receive goroutine delivers the records of the Recv section to the
// device model, and an xmit worker goroutine drains the Send section on
// behalf of other goroutines and asks the device model to retry transmits
// that hit a busy lock.
package driver

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/driver/config"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/metrics"
	"github.com/intnet-dev/intnet/pkg/private/prom"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	// RingWaitTimeout bounds a wait for the Recv section, so that the
	// receive goroutine re-checks its state periodically.
	RingWaitTimeout = 30 * time.Second

	// authorityBackoff is the pause after a failed wait request.
	authorityBackoff = time.Second
)

// DeviceModel is the virtual NIC the driver delivers to.
type DeviceModel interface {
	// WaitReceiveAvail blocks until the device can take a frame or the
	// timeout expires, in which case it returns an error. A zero timeout
	// polls.
	WaitReceiveAvail(timeout time.Duration) error
	// Receive hands a frame to the device. The frame is only valid during
	// the call.
	Receive(frame []byte) error
	// XmitPending asks the device to retry pending transmits.
	XmitPending()
}

// GsoReceiver is implemented by device models that take GSO frames in one
// piece.
type GsoReceiver interface {
	ReceiveGso(frame []byte, d gso.Descriptor) error
}

// LinkState is the link state of the device.
type LinkState int

const (
	LinkDown LinkState = iota
	LinkUp
)

func (s LinkState) String() string {
	if s == LinkUp {
		return "up"
	}
	return "down"
}

// ReceiveState is the state of the receive goroutine.
type ReceiveState int32

const (
	// Suspended delivers nothing. It is the state after New.
	Suspended ReceiveState = iota
	// Running delivers the Recv section to the device model.
	Running
	// Terminate ends the receive goroutine.
	Terminate
)

func (s ReceiveState) String() string {
	switch s {
	case Suspended:
		return "suspended"
	case Running:
		return "running"
	case Terminate:
		return "terminate"
	default:
		return "invalid"
	}
}

// Config is the configuration of a driver instance.
type Config struct {
	// Open is the request joining the network.
	Open abi.OpenRequest
	// Interface names the interface in logs and metrics. It defaults to the
	// handle.
	Interface string
	// MAC is registered with the switch if set.
	MAC net.HardwareAddr
	// IsService activates the interface on construction and deactivates it
	// only on Close.
	IsService bool
	// IgnoreConnectFailure turns open and mapping failures into a
	// disconnected driver.
	IgnoreConnectFailure bool
	// XmitOnWorker drains on the xmit worker after SendBuf.
	XmitOnWorker bool
	// LRO hands GSO frames to device models implementing GsoReceiver.
	LRO bool
	// RecvWaitSlice is the longest single wait for device model space.
	RecvWaitSlice time.Duration
	// ShutdownTimeout bounds the join of the goroutines in Close.
	ShutdownTimeout time.Duration
	// Metrics are optional.
	Metrics *Metrics
}

// NewConfig builds the driver configuration from the [network] block.
func NewConfig(cfg *config.Network) (Config, error) {
	req, err := cfg.OpenRequest()
	if err != nil {
		return Config{}, err
	}
	mac, err := cfg.HardwareAddr()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Open:                 req,
		MAC:                  mac,
		IsService:            cfg.IsService,
		IgnoreConnectFailure: cfg.IgnoreConnectFailure,
		XmitOnWorker:         cfg.XmitOnWorker,
		LRO:                  cfg.LRO,
		RecvWaitSlice:        cfg.RecvWaitSlice.Duration,
		ShutdownTimeout:      cfg.ShutdownTimeout.Duration,
	}, nil
}

func (c *Config) initDefaults() {
	if c.RecvWaitSlice <= 0 {
		c.RecvWaitSlice = config.DefaultRecvWaitSlice
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = config.DefaultShutdownTimeout
	}
}

// Stats is a snapshot of the counters of a driver.
type Stats struct {
	Connected bool
	LinkUp    bool
	State     ReceiveState

	TxFrames     uint64
	TxBytes      uint64
	TxDropped    uint64
	TxOverflows  uint64
	TxContention uint64
	TxGsoCarved  uint64

	RxFrames    uint64
	RxBytes     uint64
	RxDropped   uint64
	RxBadFrames uint64

	Send ring.Stats
	Recv ring.Stats
}

type counters struct {
	txFrames, txBytes, txDropped, txOverflows, txContention, txGsoCarved atomic.Uint64
	rxFrames, rxBytes, rxDropped, rxBadFrames                            atomic.Uint64
}

// Driver is one interface on an internal network.
type Driver struct {
	cfg     Config
	auth    authority.Authority
	dev     DeviceModel
	gsoRecv GsoReceiver
	logger  log.Logger
	metrics ifMetrics
	stats   counters

	handle    abi.Handle
	buf       *ring.Buffer
	connected bool

	// xmit is the xmit lock over the producer side of the Send section.
	xmit    sync.Mutex
	xmitTx  atomic.Pointer[Tx]
	pending *SGBuf
	scratch []byte

	gsoCapable     atomic.Bool
	linkDown       atomic.Bool
	switchLinkDown atomic.Bool

	processRing atomic.Bool
	wake        chan struct{}

	recvState  atomic.Int32
	recvWake   chan struct{}
	recvSeg    int
	recvBuf    []byte
	activeMu   sync.Mutex
	active     bool
	workerDone chan struct{}
	recvDone   chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	stop      chan struct{}
	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

// New joins the network and starts the driver goroutines. The receive
// goroutine starts suspended; call PowerOn to start delivery.
//
// If the network cannot be joined and IgnoreConnectFailure is set, New
// returns a disconnected driver that rejects every transmit with
// ErrNotConnected.
func New(ctx context.Context, auth authority.Authority, dev DeviceModel, cfg Config) (*Driver, error) {
	cfg.initDefaults()
	if cfg.Open.SendSize < config.MinSendBufferSize {
		return nil, serrors.New("send buffer too small",
			"size", cfg.Open.SendSize, "min", config.MinSendBufferSize)
	}
	logger := log.FromCtx(ctx).New("network", cfg.Open.Network)
	if cfg.Open.SendSize < config.RecommendedSendBufferSize {
		logger.Info("Send buffer is smaller than recommended, large frames may not fit",
			"size", cfg.Open.SendSize, "recommended", config.RecommendedSendBufferSize)
	}
	d := &Driver{
		cfg:        cfg,
		auth:       auth,
		dev:        dev,
		logger:     logger,
		wake:       make(chan struct{}, 1),
		recvWake:   make(chan struct{}, 1),
		workerDone: make(chan struct{}),
		recvDone:   make(chan struct{}),
		stop:       make(chan struct{}),
	}
	if r, ok := dev.(GsoReceiver); ok && cfg.LRO {
		d.gsoRecv = r
	}
	d.ctx, d.cancel = context.WithCancel(context.Background())

	if err := d.connect(ctx); err != nil {
		if !cfg.IgnoreConnectFailure {
			d.cancel()
			return nil, err
		}
		logger.Error("Joining network failed, running disconnected", "err", err)
		d.metrics = newIfMetrics(cfg.Metrics, cfg.Open.Network, d.ifName())
		close(d.workerDone)
		close(d.recvDone)
		return d, nil
	}
	d.metrics = newIfMetrics(cfg.Metrics, cfg.Open.Network, d.ifName())
	d.updateLinkMetric()

	go func() {
		defer log.HandlePanic()
		d.runWorker()
	}()
	go func() {
		defer log.HandlePanic()
		d.runReceiver()
	}()
	return d, nil
}

// connect opens the interface and maps its ring buffer. On failure nothing
// stays open.
func (d *Driver) connect(ctx context.Context) error {
	reply, err := d.auth.Open(ctx, d.cfg.Open)
	if err != nil {
		return serrors.Wrap("opening interface", err)
	}
	buf, err := d.auth.MapBufferPointers(ctx, reply.Handle)
	if err == nil {
		err = d.setup(ctx, reply.Handle)
	}
	if err != nil {
		if closeErr := d.auth.Close(ctx, reply.Handle); closeErr != nil {
			d.logger.Info("Closing interface after failed setup", "err", closeErr)
		}
		return serrors.Wrap("setting up interface", err, "handle", reply.Handle)
	}
	d.handle = reply.Handle
	d.buf = buf
	d.connected = true
	d.gsoCapable.Store(reply.GsoCapable)
	d.logger = d.logger.New("handle", reply.Handle)
	d.logger.Info("Joined network", "gso_capable", reply.GsoCapable,
		"send_cap", buf.Send.Capacity(), "recv_cap", buf.Recv.Capacity())
	return nil
}

func (d *Driver) setup(ctx context.Context, h abi.Handle) error {
	if d.cfg.MAC != nil {
		if err := d.auth.SetMacAddress(ctx, h, d.cfg.MAC); err != nil {
			return serrors.Wrap("setting mac address", err, "mac", d.cfg.MAC)
		}
	}
	if d.cfg.IsService {
		if err := d.auth.SetActive(ctx, h, true); err != nil {
			return serrors.Wrap("activating interface", err)
		}
		d.active = true
	}
	return nil
}

func (d *Driver) ifName() string {
	if d.cfg.Interface != "" {
		return d.cfg.Interface
	}
	return strconv.FormatUint(uint64(d.handle), 10)
}

// Connected reports whether the driver joined its network.
func (d *Driver) Connected() bool {
	return d.connected
}

// Handle returns the interface handle, or abi.InvalidHandle if the driver is
// disconnected.
func (d *Driver) Handle() abi.Handle {
	return d.handle
}

// PowerOn starts delivery to the device model.
func (d *Driver) PowerOn() error {
	return d.resume("power_on")
}

// Resume restarts delivery after Suspend.
func (d *Driver) Resume() error {
	return d.resume("resume")
}

// PowerOff stops delivery to the device model.
func (d *Driver) PowerOff() error {
	return d.suspend("power_off")
}

// Suspend pauses delivery to the device model.
func (d *Driver) Suspend() error {
	return d.suspend("suspend")
}

func (d *Driver) resume(reason string) error {
	if !d.connected {
		return ErrNotConnected
	}
	if !d.recvState.CompareAndSwap(int32(Suspended), int32(Running)) {
		if d.State() == Terminate {
			return ErrClosed
		}
		return nil
	}
	d.logger.Debug("Receive running", "reason", reason)
	select {
	case d.recvWake <- struct{}{}:
	default:
	}
	if d.cfg.IsService {
		return nil
	}
	return d.setActive(true)
}

func (d *Driver) suspend(reason string) error {
	if !d.connected {
		return ErrNotConnected
	}
	if !d.recvState.CompareAndSwap(int32(Running), int32(Suspended)) {
		if d.State() == Terminate {
			return ErrClosed
		}
		return nil
	}
	d.logger.Debug("Receive suspended", "reason", reason)
	if err := d.auth.AbortWait(d.ctx, d.handle); err != nil {
		d.authError("abort_wait", err)
	}
	if d.cfg.IsService {
		return nil
	}
	return d.setActive(false)
}

func (d *Driver) setActive(active bool) error {
	d.activeMu.Lock()
	defer d.activeMu.Unlock()
	if d.active == active {
		return nil
	}
	if err := d.auth.SetActive(d.ctx, d.handle, active); err != nil {
		d.authError("set_active", err)
		return serrors.Wrap("setting interface active", err, "active", active)
	}
	d.active = active
	return nil
}

// State returns the state of the receive goroutine.
func (d *Driver) State() ReceiveState {
	return ReceiveState(d.recvState.Load())
}

// SetPromiscuousMode forwards the promiscuous mode of the device to the
// switch.
func (d *Driver) SetPromiscuousMode(on bool) error {
	if !d.connected {
		return ErrNotConnected
	}
	if err := d.auth.SetPromiscuous(d.ctx, d.handle, on); err != nil {
		d.authError("set_promiscuous", err)
		return serrors.Wrap("setting promiscuous mode", err, "on", on)
	}
	return nil
}

// NotifyLinkChanged records the link state of the device. While the link is
// down, frames are dropped in both directions.
func (d *Driver) NotifyLinkChanged(state LinkState) {
	if d.linkDown.Swap(state == LinkDown) != (state == LinkDown) {
		d.logger.Info("Device link changed", "state", state)
	}
	d.updateLinkMetric()
}

func (d *Driver) linkIsDown() bool {
	return d.linkDown.Load() || d.switchLinkDown.Load()
}

func (d *Driver) updateLinkMetric() {
	metrics.GaugeSetBool(d.metrics.linkUp, !d.linkIsDown())
}

// handleEvent applies a switch authority event.
func (d *Driver) handleEvent(ev authority.Event) {
	switch ev.Kind {
	case authority.LinkChanged:
		d.switchLinkDown.Store(!ev.LinkUp)
		d.logger.Info("Switch link changed", "up", ev.LinkUp)
		d.updateLinkMetric()
	case authority.DeviceChanged:
		d.gsoCapable.Store(ev.GsoCapable)
		d.logger.Info("Switch capabilities changed", "gso_capable", ev.GsoCapable)
	default:
		d.logger.Debug("Ignoring unknown event", "kind", ev.Kind)
	}
}

func (d *Driver) authError(op string, err error) {
	result := prom.ErrNotClassified
	switch {
	case errors.Is(err, authority.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		result = prom.ErrTimeout
	case errors.Is(err, authority.ErrInterrupted), errors.Is(err, context.Canceled):
		result = prom.ErrInterrupted
	case errors.Is(err, authority.ErrClosed):
		result = errClosed
	}
	metrics.CounterInc(d.metrics.authErrors(op, result))
	d.logger.Debug("Switch authority request failed", "op", op, "err", err)
}

// Stats returns a snapshot of the driver counters.
func (d *Driver) Stats() Stats {
	s := Stats{
		Connected:    d.connected,
		LinkUp:       !d.linkIsDown(),
		State:        d.State(),
		TxFrames:     d.stats.txFrames.Load(),
		TxBytes:      d.stats.txBytes.Load(),
		TxDropped:    d.stats.txDropped.Load(),
		TxOverflows:  d.stats.txOverflows.Load(),
		TxContention: d.stats.txContention.Load(),
		TxGsoCarved:  d.stats.txGsoCarved.Load(),
		RxFrames:     d.stats.rxFrames.Load(),
		RxBytes:      d.stats.rxBytes.Load(),
		RxDropped:    d.stats.rxDropped.Load(),
		RxBadFrames:  d.stats.rxBadFrames.Load(),
	}
	if d.buf != nil {
		s.Send = d.buf.Send.Stats()
		s.Recv = d.buf.Recv.Stats()
	}
	return s
}

// Close stops the goroutines, deactivates and closes the interface. The ring
// buffer is only released if both goroutines ended within the shutdown
// timeout. Close is idempotent.
func (d *Driver) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.close()
	})
	return d.closeErr
}

func (d *Driver) close() error {
	d.closed.Store(true)
	d.recvState.Store(int32(Terminate))
	d.linkDown.Store(true)
	d.updateLinkMetric()
	if !d.connected {
		d.cancel()
		return nil
	}

	if err := d.auth.AbortWait(d.ctx, d.handle); err != nil {
		d.authError("abort_wait", err)
	}
	d.cancel()
	close(d.stop)

	timer := time.NewTimer(d.cfg.ShutdownTimeout)
	defer timer.Stop()
	for _, done := range []chan struct{}{d.workerDone, d.recvDone} {
		select {
		case <-done:
		case <-timer.C:
			d.logger.Error("Driver goroutines did not stop, leaving interface open",
				"timeout", d.cfg.ShutdownTimeout)
			return serrors.New("driver goroutines did not stop",
				"timeout", d.cfg.ShutdownTimeout)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ShutdownTimeout)
	defer cancel()
	var errs serrors.List
	d.activeMu.Lock()
	if d.active {
		if err := d.auth.SetActive(ctx, d.handle, false); err != nil {
			errs = append(errs, serrors.Wrap("deactivating interface", err))
		}
		d.active = false
	}
	d.activeMu.Unlock()
	if err := d.auth.Close(ctx, d.handle); err != nil {
		errs = append(errs, serrors.Wrap("closing interface", err))
	}
	d.logger.Info("Left network")
	return errs.ToError()
}
