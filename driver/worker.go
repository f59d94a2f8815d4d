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

package driver

// signalWorker wakes the xmit worker. Wakeups coalesce.
func (d *Driver) signalWorker() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// runWorker is the xmit worker. Each round drains the Send section if a
// drain was requested, lets the device model retry pending transmits and
// drains again for the frames sent from XmitPending. Authority events are
// applied in the same loop.
func (d *Driver) runWorker() {
	defer close(d.workerDone)
	events := d.auth.Events(d.handle)
	for {
		d.drainOnWorker()
		d.dev.XmitPending()
		d.drainOnWorker()

		select {
		case <-d.wake:
		case ev, ok := <-events:
			if !ok {
				d.logger.Error("Switch authority event stream ended, link is down")
				d.switchLinkDown.Store(true)
				d.updateLinkMetric()
				events = nil
				continue
			}
			d.handleEvent(ev)
		case <-d.stop:
			return
		}
	}
}

func (d *Driver) drainOnWorker() {
	if !d.processRing.CompareAndSwap(true, false) {
		return
	}
	tx := d.lockXmit(true)
	defer tx.End()
	d.drain()
}
