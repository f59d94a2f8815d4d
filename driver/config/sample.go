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

package config

const authoritySample = `
# The unix socket of the switch authority. (default "/run/intnet/switchd.sock")
socket = "/run/intnet/switchd.sock"

# Timeout of a request to the switch authority. (default 10s)
request_timeout = "10s"
`

const networkSample = `
# The name of the network to join. Networks are created on first use.
# (required)
name = "intnet"

# The trunk of the network (none|whatever|netflt|netadp|srvnat).
# (default "none")
trunk_type = "none"

# The trunk interface, adapter or service. Required for netflt, netadp and
# srvnat, rejected otherwise. (default "")
trunk = ""

# Capacity of the receive section of the ring buffer in bytes.
# (default 327680)
receive_buffer_size = 327680

# Capacity of the send section of the ring buffer in bytes. At least 128 and
# should be above 196608 to fit the largest GSO frames. (default 200704)
send_buffer_size = 200704

# Use the host MAC address on the wire. (default false)
shared_mac_on_wire = false

# The MAC address of the interface. A random locally administered address is
# used if empty. (default "")
mac = ""

# Policies of the network. A policy is a value optionally followed by ",fixed".
# A fixed policy must match the policy of an existing network. Empty policies
# leave the decision to the switch.
#
# (public|restricted)
access_policy = ""
# (allow|deny)
promisc_policy_clients = ""
# (allow|deny)
promisc_policy_host = ""
# (allow|deny)
promisc_policy_wire = ""
# (allow-all|allow-network|deny)
if_policy_promisc = ""
# (promiscuous|enabled|disabled)
trunk_policy_host = ""
# (promiscuous|enabled|disabled)
trunk_policy_wire = ""

# Keep the interface active on the switch while the device is suspended.
# (default false)
is_service = false

# Start without a connection if the network cannot be joined. All transmits
# fail in that case. (default false)
ignore_connect_failure = false

# Drain the send section on the xmit worker instead of the sending
# goroutine. (default false)
xmit_on_worker = false

# Deliver GSO frames in one piece to device models that accept them.
# (default false)
lro = false

# Time the receive path waits for device model space before re-checking its
# state. (default 1s)
recv_wait_slice = "1s"

# Time the driver waits for its goroutines on close. (default 5s)
shutdown_timeout = "5s"
`

const tapSample = `
# The name of the TAP device. %d is replaced by the first free number.
# (default "intnet%d")
name = "intnet%d"
`
