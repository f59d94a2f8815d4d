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

// Package serrors provides errors that carry key/value context. The context
// is rendered into the error message and, when the error is logged with zap,
// into structured fields.
//
// Errors created here support errors.Is and errors.As: an error matches its
// cause, and an error created by Join or JoinNoStack also matches its base
// error.
package serrors

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type field struct {
	key   string
	value any
}

// info is the part shared by wrapped and joined errors.
type info struct {
	fields []field
	cause  error
	stack  *stack
}

func newInfo(cause error, withStack bool, kv []any) info {
	fields := make([]field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, field{key: fmt.Sprint(kv[i]), value: kv[i+1]})
	}
	slices.SortStableFunc(fields, func(a, b field) int {
		return strings.Compare(a.key, b.key)
	})
	in := info{fields: fields, cause: cause}
	// The innermost stack is the interesting one.
	if withStack && !hasStack(cause) {
		in.stack = callers()
	}
	return in
}

func hasStack(err error) bool {
	var st interface{ StackTrace() StackTrace }
	return err != nil && errors.As(err, &st) && st.StackTrace() != nil
}

func (in *info) writeTo(b *strings.Builder) {
	if len(in.fields) > 0 {
		b.WriteString(" {")
		for i, f := range in.fields {
			if i > 0 {
				b.WriteString("; ")
			}
			fmt.Fprintf(b, "%s=%v", f.key, f.value)
		}
		b.WriteString("}")
	}
	if in.cause != nil {
		b.WriteString(": ")
		b.WriteString(in.cause.Error())
	}
}

func (in *info) marshal(enc zapcore.ObjectEncoder) error {
	if in.cause != nil {
		if m, ok := in.cause.(zapcore.ObjectMarshaler); ok {
			if err := enc.AddObject("cause", m); err != nil {
				return err
			}
		} else {
			enc.AddString("cause", in.cause.Error())
		}
	}
	if in.stack != nil {
		if err := enc.AddArray("stacktrace", in.stack); err != nil {
			return err
		}
	}
	for _, f := range in.fields {
		zap.Any(f.key, f.value).AddTo(enc)
	}
	return nil
}

// StackTrace returns the stack recorded at creation, or nil.
func (in *info) StackTrace() StackTrace {
	if in.stack == nil {
		return nil
	}
	return in.stack.StackTrace()
}

// wrapped is an error with its own message.
type wrapped struct {
	info
	msg string
}

func (e *wrapped) Error() string {
	var b strings.Builder
	b.WriteString(e.msg)
	e.writeTo(&b)
	return b.String()
}

func (e *wrapped) Unwrap() error {
	return e.cause
}

func (e *wrapped) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.msg)
	return e.marshal(enc)
}

// New returns an error with the message and context and a stack trace.
// Sentinel errors should use errors.New instead.
func New(msg string, errCtx ...any) error {
	return &wrapped{info: newInfo(nil, true, errCtx), msg: msg}
}

// Wrap returns an error with the message and context wrapping cause. A stack
// trace is recorded unless cause already carries one.
func Wrap(msg string, cause error, errCtx ...any) error {
	return &wrapped{info: newInfo(cause, true, errCtx), msg: msg}
}

// joined attaches context and a cause to a base error, typically a sentinel.
type joined struct {
	info
	base error
}

func (e *joined) Error() string {
	var b strings.Builder
	b.WriteString(e.base.Error())
	e.writeTo(&b)
	return b.String()
}

func (e *joined) Unwrap() []error {
	if e.cause == nil {
		return []error{e.base}
	}
	return []error{e.base, e.cause}
}

func (e *joined) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("msg", e.base.Error())
	return e.marshal(enc)
}

// Join returns err with the context and cause attached, recording a stack
// trace unless cause carries one. It returns nil if both err and cause are
// nil.
func Join(err, cause error, errCtx ...any) error {
	if err, cause = base(err, cause); err == nil {
		return nil
	}
	return &joined{info: newInfo(cause, true, errCtx), base: err}
}

// JoinNoStack is Join without a stack trace. It is meant for hot paths where
// the error is an expected outcome.
func JoinNoStack(err, cause error, errCtx ...any) error {
	if err, cause = base(err, cause); err == nil {
		return nil
	}
	return &joined{info: newInfo(cause, false, errCtx), base: err}
}

// base promotes cause to the base error if err is nil.
func base(err, cause error) (error, error) {
	if err == nil {
		return cause, nil
	}
	return err, cause
}

// List collects errors, for example from validating several fields.
type List []error

func (e List) Error() string {
	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return "[ " + strings.Join(s, "; ") + " ]"
}

func (e List) Unwrap() []error {
	return e
}

// ToError returns nil for an empty list and the list otherwise.
func (e List) ToError() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e List) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, err := range e {
		if m, ok := err.(zapcore.ObjectMarshaler); ok {
			if err := enc.AppendObject(m); err != nil {
				return err
			}
			continue
		}
		enc.AppendString(err.Error())
	}
	return nil
}
