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

package mgmtapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/intnet-dev/intnet/pkg/log"
	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

const (
	// BaseURL is the prefix of every API route.
	BaseURL = "/api/v1"

	// InternalError is the problem type of failed requests.
	InternalError = "/problems/internal-error"
	// NotFound is the problem type of unknown routes.
	NotFound = "/problems/not-found"

	readHeaderTimeout = 5 * time.Second
)

// Problem is an RFC 7807 problem description.
type Problem struct {
	Type   *string `json:"type,omitempty"`
	Title  string  `json:"title"`
	Status int     `json:"status"`
	Detail *string `json:"detail,omitempty"`
}

// StringRef returns a pointer to s.
func StringRef(s string) *string {
	return &s
}

// Info describes the running daemon.
type Info struct {
	Service string `json:"service"`
	ID      string `json:"id"`
	PID     int    `json:"pid"`
	Started string `json:"started"`
}

// Server serves the status API of a daemon.
type Server struct {
	// Service and ID identify the daemon in the info response.
	Service string
	ID      string
	// Status returns the JSON encodable status of the daemon.
	Status func() (any, error)

	started time.Time
}

// Handler returns the routes of the API below BaseURL.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		ErrorResponse(w, Problem{
			Status: http.StatusNotFound,
			Title:  "not found",
			Type:   StringRef(NotFound),
		})
	})
	r.Route(BaseURL, func(r chi.Router) {
		r.Get("/info", s.GetInfo)
		r.Get("/status", s.GetStatus)
	})
	return r
}

// GetInfo writes the info of the daemon.
func (s *Server) GetInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, Info{
		Service: s.Service,
		ID:      s.ID,
		PID:     os.Getpid(),
		Started: s.started.UTC().Format(time.RFC3339),
	})
}

// GetStatus writes the status of the daemon.
func (s *Server) GetStatus(w http.ResponseWriter, _ *http.Request) {
	if s.Status == nil {
		ErrorResponse(w, Problem{
			Status: http.StatusNotFound,
			Title:  "no status available",
			Type:   StringRef(NotFound),
		})
		return
	}
	status, err := s.Status()
	if err != nil {
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "error getting status",
			Type:   StringRef(InternalError),
		})
		return
	}
	writeJSON(w, status)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		ErrorResponse(w, Problem{
			Detail: StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal response",
			Type:   StringRef(InternalError),
		})
	}
}

// ErrorResponse writes a problem response.
func ErrorResponse(w http.ResponseWriter, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	// Nothing to be done if this fails.
	_ = enc.Encode(p)
}

// Serve serves h on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return serrors.Wrap("listening for status API", err, "addr", addr)
	}
	return ServeListener(ctx, l, h)
}

// ServeListener serves h on l until ctx is done.
func ServeListener(ctx context.Context, l net.Listener, h http.Handler) error {
	server := &http.Server{Handler: h, ReadHeaderTimeout: readHeaderTimeout}
	stop := context.AfterFunc(ctx, func() { server.Close() })
	defer stop()
	log.FromCtx(ctx).Info("Exposing API", "addr", l.Addr())
	if err := server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return serrors.Wrap("serving status API", err)
	}
	return nil
}
