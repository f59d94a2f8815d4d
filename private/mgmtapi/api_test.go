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

package mgmtapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
)

type status struct {
	Frames int `json:"frames"`
}

func TestServer(t *testing.T) {
	testCases := map[string]struct {
		Status     func() (any, error)
		Path       string
		StatusCode int
		Check      func(t *testing.T, body []byte)
	}{
		"status": {
			Status:     func() (any, error) { return status{Frames: 3}, nil },
			Path:       "/status",
			StatusCode: http.StatusOK,
			Check: func(t *testing.T, body []byte) {
				var s status
				require.NoError(t, json.Unmarshal(body, &s))
				assert.Equal(t, 3, s.Frames)
			},
		},
		"status error": {
			Status:     func() (any, error) { return nil, serrors.New("broken") },
			Path:       "/status",
			StatusCode: http.StatusInternalServerError,
			Check: func(t *testing.T, body []byte) {
				var p api.Problem
				require.NoError(t, json.Unmarshal(body, &p))
				assert.Equal(t, "error getting status", p.Title)
				assert.Equal(t, api.InternalError, *p.Type)
				assert.Contains(t, *p.Detail, "broken")
			},
		},
		"no status": {
			Path:       "/status",
			StatusCode: http.StatusNotFound,
		},
		"info": {
			Path:       "/info",
			StatusCode: http.StatusOK,
			Check: func(t *testing.T, body []byte) {
				var info api.Info
				require.NoError(t, json.Unmarshal(body, &info))
				assert.Equal(t, api.Info{
					Service: "intnet-switchd",
					ID:      "sw-1",
					PID:     os.Getpid(),
					Started: info.Started,
				}, info)
				assert.NotEmpty(t, info.Started)
			},
		},
		"unknown route": {
			Path:       "/segments",
			StatusCode: http.StatusNotFound,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			s := &api.Server{Service: "intnet-switchd", ID: "sw-1", Status: tc.Status}
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, api.BaseURL+tc.Path, nil)
			s.Handler().ServeHTTP(rr, req)
			assert.Equal(t, tc.StatusCode, rr.Code)
			if tc.Check != nil {
				tc.Check(t, rr.Body.Bytes())
			}
		})
	}
}

func TestGet(t *testing.T) {
	s := &api.Server{
		Service: "intnet-attach",
		Status: func() (any, error) {
			return status{Frames: 42}, nil
		},
	}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	ctx := context.Background()

	var got status
	require.NoError(t, api.Get(ctx, srv.Client(), srv.Listener.Addr().String(), "/status", &got))
	assert.Equal(t, 42, got.Frames)

	var info api.Info
	require.NoError(t, api.Get(ctx, srv.Client(), srv.URL, "/info", &info))
	assert.Equal(t, "intnet-attach", info.Service)

	err := api.Get(ctx, srv.Client(), srv.URL, "/missing", &got)
	assert.ErrorContains(t, err, "not found")
}
