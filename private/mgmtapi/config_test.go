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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/intnet-dev/intnet/private/config"
	api "github.com/intnet-dev/intnet/private/mgmtapi"
	apitest "github.com/intnet-dev/intnet/private/mgmtapi/mgmtapitest"
)

func TestConfigSample(t *testing.T) {
	var sample bytes.Buffer
	var cfg api.Config
	cfg.Sample(&sample, nil, nil)
	apitest.InitConfig(&cfg)
	err := config.Decode(sample.Bytes(), &cfg)
	assert.NoError(t, err)
	apitest.CheckConfig(t, &cfg)
}
