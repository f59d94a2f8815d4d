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

// Package intnetctl renders the status of the intnet daemons.
package intnetctl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/intnet-dev/intnet/driver"
	"github.com/intnet-dev/intnet/private/tap"
	"github.com/intnet-dev/intnet/switchd"
)

// AttachStatus is the status reported by intnet-attach.
type AttachStatus struct {
	Device string       `json:"device"`
	Driver driver.Stats `json:"driver"`
	Tap    tap.Stats    `json:"tap"`
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader(header)
	return table
}

// WriteSwitchStatus writes the networks and interfaces of a switch.
func WriteSwitchStatus(w io.Writer, st switchd.Status) {
	fmt.Fprintf(w, "GSO capable: %t\n\n", st.GsoCapable)

	networks := newTable(w, "NETWORK", "TRUNK", "ACCESS", "LINK", "PORTS", "LEARNED")
	for _, n := range st.Networks {
		networks.Append([]string{
			n.Name,
			n.Trunk,
			n.Access,
			upDown(n.LinkUp),
			strconv.Itoa(n.Ports),
			strconv.Itoa(n.Learned),
		})
	}
	networks.Render()
	fmt.Fprintln(w)

	ifs := newTable(w, "HANDLE", "NETWORK", "ACTIVE", "PROMISC", "SENT", "RECEIVED",
		"DROPPED", "SEND", "RECV")
	for _, i := range st.Interfaces {
		ifs.Append([]string{
			strconv.FormatUint(uint64(i.Handle), 10),
			i.Network,
			yesNo(i.Active),
			yesNo(i.Promisc),
			strconv.FormatUint(i.Sent, 10),
			strconv.FormatUint(i.Received, 10),
			strconv.FormatUint(i.Dropped, 10),
			usage(i.SendUsed, i.SendCap),
			usage(i.RecvUsed, i.RecvCap),
		})
	}
	ifs.Render()
}

// WriteAttachStatus writes the counters of an attached driver.
func WriteAttachStatus(w io.Writer, st AttachStatus) {
	s := st.Driver
	fmt.Fprintf(w, "Device: %s\nConnected: %t\nLink: %s\nReceive: %s\n\n",
		st.Device, s.Connected, upDown(s.LinkUp), s.State)

	table := newTable(w, "", "FRAMES", "BYTES", "DROPPED", "OTHER")
	table.Append([]string{
		"tx",
		strconv.FormatUint(s.TxFrames, 10),
		strconv.FormatUint(s.TxBytes, 10),
		strconv.FormatUint(s.TxDropped, 10),
		fmt.Sprintf("overflows=%d contention=%d gso_carved=%d",
			s.TxOverflows, s.TxContention, s.TxGsoCarved),
	})
	table.Append([]string{
		"rx",
		strconv.FormatUint(s.RxFrames, 10),
		strconv.FormatUint(s.RxBytes, 10),
		strconv.FormatUint(s.RxDropped, 10),
		fmt.Sprintf("bad_frames=%d", s.RxBadFrames),
	})
	table.Render()
	fmt.Fprintf(w, "\nDevice write errors: %d, transmit drops: %d\n",
		st.Tap.RxErrors, st.Tap.TxDropped)
}

func upDown(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func usage(used, capacity int) string {
	return fmt.Sprintf("%d/%d", used, capacity)
}
