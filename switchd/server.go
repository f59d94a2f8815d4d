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

package switchd

import (
	"context"
	"encoding"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// Server serves the switch authority protocol on a stream listener. Each
// connection is a session; its interfaces are closed when the connection
// ends.
type Server struct {
	sw     *Switch
	logger log.Logger

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
	nextConn atomic.Uint64
}

// NewServer creates a server for sw.
func NewServer(sw *Switch) *Server {
	return &Server{
		sw:     sw,
		logger: sw.logger.New("component", "server"),
		conns:  make(map[net.Conn]struct{}),
	}
}

// ListenAndServe serves on the unix socket at path until ctx is done. A
// stale socket file is removed.
func (s *Server) ListenAndServe(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return serrors.Wrap("removing stale socket", err, "socket", path)
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return serrors.Wrap("listening", err, "socket", path)
	}
	s.logger.Info("Serving switch authority", "socket", path)
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done. It closes l and every
// connection before returning.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	defer s.wg.Wait()
	defer s.shutdown(l)
	stop := context.AfterFunc(ctx, func() { s.shutdown(l) })
	defer stop()

	for {
		conn, err := l.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return serrors.Wrap("accepting connection", err)
		}
		s.mu.Lock()
		if s.conns == nil {
			s.mu.Unlock()
			conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer log.HandlePanic()
			s.serveConn(ctx, conn)
		}()
	}
}

// shutdown closes the listener and every connection. Connections accepted
// afterwards are refused.
func (s *Server) shutdown(l net.Listener) {
	l.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = nil
}

type serverConn struct {
	conn    net.Conn
	sess    *Session
	logger  log.Logger
	writeMu sync.Mutex
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	ctx, logger := log.WithLabels(log.CtxWith(ctx, s.logger), "conn", s.nextConn.Add(1))
	ctx, cancel := context.WithCancel(ctx)
	events := make(chan authority.Event, forwardQueueLen)
	c := &serverConn{
		conn:   conn,
		sess:   s.sw.newSession(events),
		logger: logger,
	}
	logger.Debug("Client connected")

	notified := make(chan struct{})
	go func() {
		defer close(notified)
		defer log.HandlePanic()
		for ev := range events {
			n := ev.Notification()
			m, err := abi.NewMessage(abi.OpNotify, 0, ev.Handle, &n)
			if err != nil {
				c.logger.Error("Encoding notification", "err", err)
				continue
			}
			c.write(m)
		}
	}()

	var handlers sync.WaitGroup
	for {
		m, err := abi.ReadMessage(conn)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logger.Debug("Client connection ended", "err", err)
			}
			break
		}
		handlers.Add(1)
		go func() {
			defer handlers.Done()
			defer log.HandlePanic()
			c.write(c.handle(ctx, m))
		}()
	}

	cancel()
	c.sess.Detach()
	handlers.Wait()
	<-notified
	conn.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns != nil {
		delete(s.conns, conn)
	}
}

func (c *serverConn) write(m *abi.Message) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := abi.WriteMessage(c.conn, m); err != nil {
		c.logger.Debug("Writing message failed", "op", m.Op, "err", err)
	}
}

// handle runs one request and returns its reply.
func (c *serverConn) handle(ctx context.Context, req *abi.Message) *abi.Message {
	body, err := c.dispatch(ctx, req)
	if err != nil {
		body = nil
		if !errors.Is(err, authority.ErrTimeout) && !errors.Is(err, authority.ErrInterrupted) {
			c.logger.Debug("Request failed", "op", req.Op, "handle", req.Handle, "err", err)
		}
	}
	reply, encErr := abi.NewMessage(req.Op, req.ID, req.Handle, body)
	if encErr != nil {
		reply, _ = abi.NewMessage(req.Op, req.ID, req.Handle, nil)
		err = encErr
	}
	reply.Status = authority.ToStatus(err)
	return reply
}

func (c *serverConn) dispatch(ctx context.Context,
	req *abi.Message) (encoding.BinaryMarshaler, error) {

	sess, h := c.sess, req.Handle
	switch req.Op {
	case abi.OpOpen:
		var r abi.OpenRequest
		if err := r.UnmarshalBinary(req.Body); err != nil {
			return nil, err
		}
		reply, err := sess.Open(ctx, r)
		if err != nil {
			return nil, err
		}
		return &reply, nil
	case abi.OpClose:
		return nil, sess.Close(ctx, h)
	case abi.OpSend:
		return nil, sess.Send(ctx, h)
	case abi.OpWait:
		var r abi.WaitRequest
		if err := r.UnmarshalBinary(req.Body); err != nil {
			return nil, err
		}
		return nil, sess.Wait(ctx, h, r.Timeout)
	case abi.OpAbortWait:
		return nil, sess.AbortWait(ctx, h)
	case abi.OpSetPromiscuous:
		var r abi.BoolRequest
		if err := r.UnmarshalBinary(req.Body); err != nil {
			return nil, err
		}
		return nil, sess.SetPromiscuous(ctx, h, r.Value)
	case abi.OpSetActive:
		var r abi.BoolRequest
		if err := r.UnmarshalBinary(req.Body); err != nil {
			return nil, err
		}
		return nil, sess.SetActive(ctx, h, r.Value)
	case abi.OpSetMacAddress:
		var r abi.MacRequest
		if err := r.UnmarshalBinary(req.Body); err != nil {
			return nil, err
		}
		return nil, sess.SetMacAddress(ctx, h, r.MAC)
	case abi.OpGetBufferPointers:
		reply, err := sess.BufferPointers(h)
		if err != nil {
			return nil, err
		}
		return &reply, nil
	default:
		return nil, serrors.JoinNoStack(authority.ErrInvalidParameter, nil, "op", req.Op)
	}
}
