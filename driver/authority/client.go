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
	"encoding"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
	"github.com/intnet-dev/intnet/private/shm"
)

// DefaultRequestTimeout bounds a round trip to the switch. Waits add their
// own timeout on top.
const DefaultRequestTimeout = 10 * time.Second

var _ Authority = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRequestTimeout sets the round trip timeout of requests.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger of the client.
func WithLogger(l log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// Client talks to a switch authority over a stream connection. Requests may
// be issued concurrently; replies are matched by request ID. Buffer pointers
// are shared memory files, mapped until the handle is closed.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	logger  log.Logger

	writeMu sync.Mutex
	nextID  atomic.Uint32

	mu       sync.Mutex
	pending  map[uint32]chan *abi.Message
	segments map[abi.Handle]*shm.Segment
	err      error

	events EventMux
	done   chan struct{}
}

// Dial connects to the switch authority listening on the unix socket.
func Dial(ctx context.Context, socket string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return nil, serrors.Wrap("connecting to switch authority", err, "socket", socket)
	}
	return NewClient(conn, opts...), nil
}

// NewClient starts a client on an established connection. The client owns
// the connection.
func NewClient(conn net.Conn, opts ...Option) *Client {
	c := &Client{
		conn:     conn,
		timeout:  DefaultRequestTimeout,
		logger:   log.New("component", "authority_client"),
		pending:  make(map[uint32]chan *abi.Message),
		segments: make(map[abi.Handle]*shm.Segment),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go func() {
		defer log.HandlePanic()
		c.readLoop()
	}()
	return c
}

// Disconnect closes the connection and releases every mapping. Pending
// calls fail with ErrClosed.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if c.err == nil {
		c.err = ErrClosed
	}
	c.mu.Unlock()
	err := c.conn.Close()
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()
	for h, seg := range c.segments {
		if err := seg.Close(); err != nil {
			c.logger.Debug("Unmapping ring buffer failed", "handle", h, "err", err)
		}
		delete(c.segments, h)
	}
	return err
}

func (c *Client) Events(h abi.Handle) <-chan Event {
	return c.events.Subscribe(h)
}

func (c *Client) Open(ctx context.Context, req abi.OpenRequest) (abi.OpenReply, error) {
	m, err := c.call(ctx, abi.OpOpen, abi.InvalidHandle, &req, 0)
	if err != nil {
		return abi.OpenReply{}, err
	}
	var reply abi.OpenReply
	if err := reply.UnmarshalBinary(m.Body); err != nil {
		return abi.OpenReply{}, serrors.Wrap("decoding open reply", err)
	}
	c.events.Subscribe(reply.Handle)
	return reply, nil
}

func (c *Client) Close(ctx context.Context, h abi.Handle) error {
	_, err := c.call(ctx, abi.OpClose, h, nil, 0)
	c.events.Remove(h)
	c.mu.Lock()
	seg := c.segments[h]
	delete(c.segments, h)
	c.mu.Unlock()
	if seg != nil {
		if unmapErr := seg.Close(); unmapErr != nil && err == nil {
			err = serrors.Wrap("unmapping ring buffer", unmapErr, "handle", h)
		}
	}
	return err
}

func (c *Client) Send(ctx context.Context, h abi.Handle) error {
	_, err := c.call(ctx, abi.OpSend, h, nil, 0)
	return err
}

func (c *Client) Wait(ctx context.Context, h abi.Handle, timeout time.Duration) error {
	_, err := c.call(ctx, abi.OpWait, h, &abi.WaitRequest{Timeout: timeout}, timeout)
	return err
}

func (c *Client) AbortWait(ctx context.Context, h abi.Handle) error {
	_, err := c.call(ctx, abi.OpAbortWait, h, nil, 0)
	return err
}

func (c *Client) SetPromiscuous(ctx context.Context, h abi.Handle, on bool) error {
	_, err := c.call(ctx, abi.OpSetPromiscuous, h, &abi.BoolRequest{Value: on}, 0)
	return err
}

func (c *Client) SetActive(ctx context.Context, h abi.Handle, active bool) error {
	_, err := c.call(ctx, abi.OpSetActive, h, &abi.BoolRequest{Value: active}, 0)
	return err
}

func (c *Client) SetMacAddress(ctx context.Context, h abi.Handle, mac net.HardwareAddr) error {
	_, err := c.call(ctx, abi.OpSetMacAddress, h, &abi.MacRequest{MAC: mac}, 0)
	return err
}

func (c *Client) MapBufferPointers(ctx context.Context, h abi.Handle) (*ring.Buffer, error) {
	m, err := c.call(ctx, abi.OpGetBufferPointers, h, nil, 0)
	if err != nil {
		return nil, err
	}
	var reply abi.BufferPointersReply
	if err := reply.UnmarshalBinary(m.Body); err != nil {
		return nil, serrors.Wrap("decoding buffer pointers", err)
	}
	seg, err := shm.Open(reply.Path, int(reply.Size))
	if err != nil {
		return nil, serrors.Wrap("mapping ring buffer", err, "path", reply.Path)
	}
	buf, err := ring.Attach(seg.Bytes())
	if err == nil && (buf.Send.Capacity() != int(reply.SendCap) ||
		buf.Recv.Capacity() != int(reply.RecvCap)) {

		err = serrors.JoinNoStack(ring.ErrBadLayout, nil,
			"send_cap", buf.Send.Capacity(), "want_send_cap", reply.SendCap,
			"recv_cap", buf.Recv.Capacity(), "want_recv_cap", reply.RecvCap)
	}
	if err != nil {
		seg.Close()
		return nil, serrors.Wrap("attaching ring buffer", err, "path", reply.Path)
	}

	c.mu.Lock()
	old := c.segments[h]
	c.segments[h] = seg
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return buf, nil
}

// call sends a request and waits for its reply. extra extends the request
// timeout for operations that block on the switch side.
func (c *Client) call(
	ctx context.Context,
	op abi.Op,
	h abi.Handle,
	body encoding.BinaryMarshaler,
	extra time.Duration,
) (*abi.Message, error) {

	id := c.nextID.Add(1)
	if id == 0 {
		// Zero is the ID of notifications.
		id = c.nextID.Add(1)
	}
	req, err := abi.NewMessage(op, id, h, body)
	if err != nil {
		return nil, err
	}
	ch := make(chan *abi.Message, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return nil, err
	}
	c.pending[id] = ch
	c.mu.Unlock()

	timer := time.NewTimer(c.timeout + extra)
	defer timer.Stop()

	c.writeMu.Lock()
	err = abi.WriteMessage(c.conn, req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return nil, err
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			return nil, c.err
		}
		if reply.Op != op {
			return nil, serrors.JoinNoStack(ErrInternal, nil,
				"reason", "reply op mismatch", "op", op, "reply_op", reply.Op)
		}
		if err := FromStatus(reply.Status); err != nil {
			return nil, serrors.JoinNoStack(err, nil, "op", op, "handle", h)
		}
		return reply, nil
	case <-timer.C:
		c.forget(id)
		return nil, serrors.JoinNoStack(ErrTimeout, nil,
			"op", op, "handle", h, "timeout", c.timeout+extra)
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	}
}

func (c *Client) forget(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

func (c *Client) readLoop() {
	defer close(c.done)
	var err error
	for {
		var m *abi.Message
		if m, err = abi.ReadMessage(c.conn); err != nil {
			break
		}
		if m.Op == abi.OpNotify {
			c.notify(m)
			continue
		}
		c.mu.Lock()
		ch, ok := c.pending[m.ID]
		delete(c.pending, m.ID)
		c.mu.Unlock()
		if !ok {
			c.logger.Debug("Dropping reply without request", "op", m.Op, "id", m.ID)
			continue
		}
		ch <- m
	}

	c.mu.Lock()
	if c.err == nil {
		c.logger.Info("Switch authority connection lost", "err", err)
		c.err = serrors.JoinNoStack(ErrClosed, err)
	}
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
	c.mu.Unlock()
	c.events.Close()
}

func (c *Client) notify(m *abi.Message) {
	var n abi.Notification
	if err := n.UnmarshalBinary(m.Body); err != nil {
		c.logger.Info("Ignoring malformed notification", "handle", m.Handle, "err", err)
		return
	}
	if !c.events.Publish(EventFromNotification(m.Handle, n)) {
		c.logger.Info("Dropping event", "handle", m.Handle, "kind", n.Kind)
	}
}
