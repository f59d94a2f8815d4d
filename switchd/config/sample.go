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

const switchSample = `
# The unix socket the switch authority listens on.
# (default "/run/intnet/switchd.sock")
socket = "/run/intnet/switchd.sock"

# The directory of the shared memory segments holding the ring buffers.
# (default "/dev/shm")
shm_dir = "/dev/shm"

# Lifetime of a learned MAC address. (default 5m)
mac_ttl = "5m"

# Accept GSO frames from the clients instead of having them carve the
# segments. (default false)
gso_capable = false
`
