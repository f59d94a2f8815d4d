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

//go:build unix

package shm

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

func mapFile(f *os.File, size int, truncate bool) ([]byte, error) {
	if size <= 0 {
		return nil, serrors.New("invalid segment size", "size", size)
	}
	if truncate {
		if err := f.Truncate(int64(size)); err != nil {
			return nil, serrors.Wrap("resizing segment", err, "path", f.Name())
		}
	} else {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		if info.Size() < int64(size) {
			return nil, serrors.New("segment too small", "path", f.Name(),
				"size", info.Size(), "want", size)
		}
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, serrors.Wrap("mapping segment", err, "path", f.Name(), "size", size)
	}
	return mem, nil
}

func unmap(mem []byte) error {
	return unix.Munmap(mem)
}
