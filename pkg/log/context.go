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

package log

import "context"

type ctxKey struct{}

// CtxWith returns a copy of ctx carrying logger. Use FromCtx to get it back.
func CtxWith(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromCtx returns the logger of ctx, or the root logger if ctx carries none.
// It never returns nil.
func FromCtx(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
			return l
		}
	}
	return Root()
}

// WithLabels attaches a child logger with the labels to ctx and returns both.
func WithLabels(ctx context.Context, labels ...any) (context.Context, Logger) {
	l := FromCtx(ctx).New(labels...)
	return CtxWith(ctx, l), l
}
