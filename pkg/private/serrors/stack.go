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

package serrors

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

const maxStackDepth = 32

// Frame represents a program counter inside a stack frame.
type Frame uintptr

// pc returns the program counter for this frame; multiple frames may have
// the same PC value.
func (f Frame) pc() uintptr { return uintptr(f) - 1 }

// function returns the name of the function of this Frame.
func (f Frame) function() string {
	fn := runtime.FuncForPC(f.pc())
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

// fileLine returns the file name and line number of the source code of this Frame.
func (f Frame) fileLine() (string, int) {
	fn := runtime.FuncForPC(f.pc())
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(f.pc())
}

// MarshalText formats a stacktrace Frame as a text string. The output is the
// same as that of fmt.Sprintf("%+v", f), but without newlines or tabs.
func (f Frame) MarshalText() ([]byte, error) {
	name := f.function()
	if name == "unknown" {
		return []byte(name), nil
	}
	file, line := f.fileLine()
	return []byte(name + " " + file + ":" + strconv.Itoa(line)), nil
}

// StackTrace is stack of Frames from innermost (newest) to outermost (oldest).
type StackTrace []Frame

// String renders one frame per line.
func (st StackTrace) String() string {
	var b strings.Builder
	for _, f := range st {
		t, _ := f.MarshalText()
		fmt.Fprintf(&b, "%s\n", t)
	}
	return b.String()
}

// stack represents a stack of program counters.
type stack []uintptr

func (s *stack) StackTrace() StackTrace {
	f := make([]Frame, len(*s))
	for i := 0; i < len(f); i++ {
		f[i] = Frame((*s)[i])
	}
	return f
}

func callers() *stack {
	var pcs [maxStackDepth]uintptr
	// Skip runtime.Callers, callers, newInfo and the exported constructor.
	n := runtime.Callers(4, pcs[:])
	var st stack = pcs[0:n]
	return &st
}

func (s *stack) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, pc := range *s {
		t, err := Frame(pc).MarshalText()
		if err != nil {
			return err
		}
		enc.AppendByteString(t)
	}
	return nil
}
