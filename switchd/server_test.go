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

package switchd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/driver/authority"
	"github.com/intnet-dev/intnet/pkg/intnet/abi"
	"github.com/intnet-dev/intnet/pkg/intnet/ring"
	"github.com/intnet-dev/intnet/switchd"
)

// serve runs a server for sw on a fresh unix socket until the test ends.
func serve(t *testing.T, sw *switchd.Switch) string {
	t.Helper()
	// Unix socket paths are short, t.TempDir paths may not be.
	dir, err := os.MkdirTemp("", "intnet")
	require.NoError(t, err)
	socket := filepath.Join(dir, "switch.sock")

	ctx, cancel := context.WithCancel(testContext(t))
	srv := switchd.NewServer(sw)
	errs := make(chan error, 1)
	go func() { errs <- srv.ListenAndServe(ctx, socket) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errs)
		os.RemoveAll(dir)
	})
	require.Eventually(t, func() bool {
		_, err := os.Stat(socket)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	return socket
}

func dial(t *testing.T, socket string) *authority.Client {
	t.Helper()
	c, err := authority.Dial(context.Background(), socket,
		authority.WithRequestTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { c.Disconnect() })
	return c
}

func openRemote(t *testing.T, c *authority.Client, network string) (abi.Handle, *ring.Buffer) {
	t.Helper()
	ctx := context.Background()
	reply, err := c.Open(ctx, abi.OpenRequest{Network: network, SendSize: 8192, RecvSize: 8192})
	require.NoError(t, err)
	buf, err := c.MapBufferPointers(ctx, reply.Handle)
	require.NoError(t, err)
	require.NoError(t, c.SetActive(ctx, reply.Handle, true))
	return reply.Handle, buf
}

func TestServer(t *testing.T) {
	sw := newSwitch(t, switchd.Config{ShmDir: t.TempDir()})
	socket := serve(t, sw)
	ctx := context.Background()

	a, b := dial(t, socket), dial(t, socket)
	ha, bufA := openRemote(t, a, "net")
	hb, bufB := openRemote(t, b, "net")
	require.NoError(t, b.SetMacAddress(ctx, hb, macB))

	require.NoError(t, bufA.Send.Write(frame(t, macA, macB), nil))
	require.NoError(t, a.Send(ctx, ha))
	require.NoError(t, b.Wait(ctx, hb, 5*time.Second))
	rec, ok, err := bufB.Recv.Peek()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, frame(t, macA, macB), rec.Frame())
	require.NoError(t, bufB.Recv.Skip())

	err = b.Wait(ctx, hb, 10*time.Millisecond)
	assert.ErrorIs(t, err, authority.ErrTimeout)
	require.NoError(t, b.AbortWait(ctx, hb))
	assert.ErrorIs(t, b.Wait(ctx, hb, 5*time.Second), authority.ErrInterrupted)

	// Handles belong to the connection that opened them.
	assert.ErrorIs(t, b.Send(ctx, ha), authority.ErrInvalidHandle)
	assert.ErrorIs(t, b.SetMacAddress(ctx, hb, broadcast), authority.ErrInvalidParameter)

	require.NoError(t, sw.SetLink("net", false))
	assert.Equal(t, authority.Event{Kind: authority.LinkChanged, Handle: ha}, <-a.Events(ha))
	assert.Equal(t, authority.Event{Kind: authority.LinkChanged, Handle: hb}, <-b.Events(hb))

	require.NoError(t, a.Close(ctx, ha))
	assert.Len(t, sw.Status().Interfaces, 1)
}

func TestServerDisconnect(t *testing.T) {
	sw := newSwitch(t, switchd.Config{ShmDir: t.TempDir()})
	socket := serve(t, sw)

	c := dial(t, socket)
	openRemote(t, c, "a")
	openRemote(t, c, "b")
	require.Len(t, sw.Status().Interfaces, 2)

	require.NoError(t, c.Disconnect())
	require.Eventually(t, func() bool {
		return len(sw.Status().Interfaces) == 0
	}, 5*time.Second, 10*time.Millisecond)
	assert.Empty(t, sw.Status().Networks)
}

func TestServerShutdown(t *testing.T) {
	sw := newSwitch(t, switchd.Config{})
	dir, err := os.MkdirTemp("", "intnet")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	socket := filepath.Join(dir, "switch.sock")
	// A stale socket file is replaced.
	require.NoError(t, os.WriteFile(socket, nil, 0o600))

	ctx, cancel := context.WithCancel(testContext(t))
	errs := make(chan error, 1)
	go func() { errs <- switchd.NewServer(sw).ListenAndServe(ctx, socket) }()

	var c *authority.Client
	require.Eventually(t, func() bool {
		c, err = authority.Dial(context.Background(), socket)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	reply, err := c.Open(context.Background(), abi.OpenRequest{Network: "net"})
	require.NoError(t, err)

	cancel()
	require.NoError(t, <-errs)
	_, ok := <-c.Events(reply.Handle)
	assert.False(t, ok)
	_, err = c.Open(context.Background(), abi.OpenRequest{Network: "net"})
	assert.ErrorIs(t, err, authority.ErrClosed)
	c.Disconnect()
	assert.Empty(t, sw.Status().Interfaces)
}
