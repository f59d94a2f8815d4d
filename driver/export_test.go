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

import "github.com/intnet-dev/intnet/pkg/intnet/gso"

// SendCarved carves frame from scratch memory without the descriptor checks
// of SendBuf.
func (tx *Tx) SendCarved(frame []byte, desc gso.Descriptor) error {
	b := &SGBuf{Data: frame, Gso: &desc, scratch: true, size: len(frame)}
	tx.d.pending = b
	return tx.d.sendCarved(b)
}
