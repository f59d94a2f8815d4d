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
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/driver/mock_driver"
	"github.com/intnet-dev/intnet/pkg/intnet/gso"
	"github.com/intnet-dev/intnet/pkg/intnet/gso/gsotest"
)

type lroModel struct {
	*mock_driver.MockDeviceModel
	*mock_driver.MockGsoReceiver
}

func TestReceiveDeviceErrors(t *testing.T) {
	errFull := errors.New("queue full")
	gsoFrame, desc := gsotest.TCPv4(t, gsotest.Payload(3000), 1514)
	plain := bytes.Repeat([]byte{7}, 80)

	tests := map[string]struct {
		lro   bool
		first []byte
		desc  *gso.Descriptor
	}{
		"plain frame": {first: bytes.Repeat([]byte{1}, 60)},
		"lro frame":   {lro: true, first: gsoFrame, desc: &desc},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			model := mock_driver.NewMockDeviceModel(ctrl)
			model.EXPECT().XmitPending().AnyTimes()
			model.EXPECT().WaitReceiveAvail(gomock.Any()).Return(nil).AnyTimes()

			got := make(chan []byte, 1)
			var dev driver.DeviceModel = model
			if tc.lro {
				recv := mock_driver.NewMockGsoReceiver(ctrl)
				recv.EXPECT().ReceiveGso(tc.first, desc).Return(errFull)
				model.EXPECT().Receive(plain).DoAndReturn(func(f []byte) error {
					got <- append([]byte(nil), f...)
					return nil
				})
				dev = lroModel{MockDeviceModel: model, MockGsoReceiver: recv}
			} else {
				gomock.InOrder(
					model.EXPECT().Receive(tc.first).Return(errFull),
					model.EXPECT().Receive(plain).DoAndReturn(func(f []byte) error {
						got <- append([]byte(nil), f...)
						return nil
					}),
				)
			}

			auth := newFakeAuthority(t, 4096, 16384)
			d := newDriver(t, auth, dev, driver.Config{LRO: tc.lro})
			require.NoError(t, d.PowerOn())

			auth.deliver(t, tc.first, tc.desc)
			auth.deliver(t, plain, nil)
			select {
			case f := <-got:
				assert.Equal(t, plain, f)
			case <-time.After(waitFor):
				require.FailNow(t, "timed out waiting for frame")
			}
			assert.Eventually(t, func() bool {
				s := d.Stats()
				return s.RxDropped == 1 && s.RxFrames == 1
			}, waitFor, time.Millisecond)
		})
	}
}
