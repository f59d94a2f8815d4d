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
	"io"
	"net/http"
	"strings"

	"github.com/intnet-dev/intnet/pkg/private/serrors"
)

// Get fetches the API resource at path from the daemon listening on addr and
// decodes it into v. Problem responses are returned as errors.
func Get(ctx context.Context, client *http.Client, addr, path string, v any) error {
	if client == nil {
		client = http.DefaultClient
	}
	url := addr
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	url = strings.TrimSuffix(url, "/") + BaseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return serrors.Wrap("creating request", err, "url", url)
	}
	rep, err := client.Do(req)
	if err != nil {
		return serrors.Wrap("requesting status", err, "url", url)
	}
	defer rep.Body.Close()
	body, err := io.ReadAll(rep.Body)
	if err != nil {
		return serrors.Wrap("reading response", err, "url", url)
	}
	if rep.StatusCode != http.StatusOK {
		var p Problem
		if err := json.Unmarshal(body, &p); err != nil || p.Title == "" {
			return serrors.New("request failed", "url", url, "status", rep.StatusCode)
		}
		detail := ""
		if p.Detail != nil {
			detail = *p.Detail
		}
		return serrors.New(p.Title, "url", url, "status", p.Status, "detail", detail)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return serrors.Wrap("decoding response", err, "url", url)
	}
	return nil
}
