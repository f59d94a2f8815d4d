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

package tap

import (
	"context"
	"net"

	"github.com/vishvananda/netlink"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// LinkObserver is told about changes of the device link.
type LinkObserver interface {
	NotifyLinkChanged(state driver.LinkState)
	SetPromiscuousMode(on bool) error
}

// WatchLink forwards the link state and the promiscuous mode of the named
// link to o until ctx is done.
func WatchLink(ctx context.Context, name string, o LinkObserver) error {
	updates := make(chan netlink.LinkUpdate, 16)
	done := make(chan struct{})
	defer close(done)
	if err := netlink.LinkSubscribe(updates, done); err != nil {
		return serrors.Wrap("subscribing to link updates", err)
	}
	link, err := netlink.LinkByName(name)
	if err != nil {
		return serrors.Wrap("looking up link", err, "name", name)
	}
	w := linkWatcher{observer: o}
	w.update(ctx, link.Attrs())
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return serrors.New("link update subscription ended", "name", name)
			}
			if attrs := u.Link.Attrs(); attrs.Name == name {
				w.update(ctx, attrs)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

type linkWatcher struct {
	observer LinkObserver
	known    bool
	state    driver.LinkState
	promisc  bool
}

func (w *linkWatcher) update(ctx context.Context, attrs *netlink.LinkAttrs) {
	state, promisc := linkState(attrs)
	first := !w.known
	w.known = true
	if first || state != w.state {
		w.state = state
		w.observer.NotifyLinkChanged(state)
	}
	if first || promisc != w.promisc {
		w.promisc = promisc
		if err := w.observer.SetPromiscuousMode(promisc); err != nil {
			log.FromCtx(ctx).Info("Forwarding promiscuous mode failed", "on", promisc, "err", err)
		}
	}
}

// linkState maps the attributes of a link to its state. A link is up if it
// is administratively up and its operational state is not known to be down.
func linkState(attrs *netlink.LinkAttrs) (driver.LinkState, bool) {
	state := driver.LinkDown
	if attrs.Flags&net.FlagUp != 0 &&
		(attrs.OperState == netlink.OperUp || attrs.OperState == netlink.OperUnknown) {

		state = driver.LinkUp
	}
	return state, attrs.Promisc != 0
}
