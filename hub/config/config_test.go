// Copyright 2025 PeerBeam, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := New()

	assert.Equal(t, "0.0.0.0:3000", cfg.Addr())
	assert.True(t, cfg.WSFallback)
	assert.Equal(t, 10, cfg.RateLimit.Attempts)
	assert.Equal(t, Duration(10*time.Second), cfg.RateLimit.Window)
	assert.Equal(t, Duration(2*time.Second), cfg.Heartbeat.Interval)
	assert.Equal(t, 2, cfg.Heartbeat.TimeoutFactor)
}

func TestFromBytes(t *testing.T) {
	data := []byte(`
host: 127.0.0.1
port: 8080
wsFallback: false
trustedProxyHeader: X-Forwarded-For
rtcConfig: '{"iceServers":[{"urls":"stun:stun.example.com:3478"}]}'
rateLimit:
  attempts: 5
  window: 30s
heartbeat:
  interval: 1s
  timeoutFactor: 3
`)

	cfg, err := FromBytes(data)
	assert.Nil(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.False(t, cfg.WSFallback)
	assert.Equal(t, "X-Forwarded-For", cfg.TrustedProxyHeader)
	assert.Contains(t, cfg.RTCConfig, "stun.example.com")
	assert.Equal(t, 5, cfg.RateLimit.Attempts)
	assert.Equal(t, Duration(30*time.Second), cfg.RateLimit.Window)
	assert.Equal(t, Duration(time.Second), cfg.Heartbeat.Interval)
	assert.Equal(t, 3, cfg.Heartbeat.TimeoutFactor)
}

func TestFromBytesRejectsBadRTCConfig(t *testing.T) {
	_, err := FromBytes([]byte(`rtcConfig: '{not json}'`))
	assert.NotNil(t, err)
}

func TestFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hub.yaml")
	data := []byte(`
port: 9000
wsFallback: true
`)
	err := ioutil.WriteFile(path, data, os.ModePerm)
	assert.Nil(t, err)

	cfg, err := FromPath(path)
	assert.Nil(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.WSFallback)
}

func TestFromPathMissingFile(t *testing.T) {
	_, err := FromPath("/no/such/config.yaml")
	assert.NotNil(t, err)
}
