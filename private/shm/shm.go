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

// Package shm manages file backed shared memory segments. The switch creates
// one segment per interface holding its ring buffer, and the driver maps the
// segment named in the buffer pointers reply.
package shm

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrUnsupported is returned on platforms without shared file mappings.
	ErrUnsupported = errors.New("shared memory not supported on this platform")
	// ErrClosed is returned when closing a segment twice.
	ErrClosed = errors.New("segment closed")
)

// Segment is a mapped shared memory file.
type Segment struct {
	path  string
	owner bool

	mu  sync.Mutex
	mem []byte
}

// DefaultDir returns /dev/shm if it exists and the temporary directory
// otherwise.
func DefaultDir() string {
	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return "/dev/shm"
	}
	return os.TempDir()
}

// Path returns the file path of the segment.
func (s *Segment) Path() string {
	return s.path
}

// Bytes returns the mapped memory. It must not be used after Close.
func (s *Segment) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem
}

// Close unmaps the segment. The creator of a segment also removes its file.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mem == nil {
		return ErrClosed
	}
	err := unmap(s.mem)
	s.mem = nil
	if s.owner {
		if rmErr := os.Remove(s.path); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// Create creates and maps a zeroed segment of size bytes in dir. The file
// name starts with prefix and is unique.
func Create(dir, prefix string, size int) (*Segment, error) {
	f, err := os.CreateTemp(dir, prefix+"-*")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mem, err := mapFile(f, size, true)
	if err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Segment{path: filepath.Clean(f.Name()), owner: true, mem: mem}, nil
}

// Open maps the existing segment at path.
func Open(path string, size int) (*Segment, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mem, err := mapFile(f, size, false)
	if err != nil {
		return nil, err
	}
	return &Segment{path: path, mem: mem}, nil
}
