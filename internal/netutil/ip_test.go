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

package netutil

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.0.0.1", "10.0.0.1"},
		{"::1", "127.0.0.1"},
		{"127.0.0.1", "127.0.0.1"},
		{"::ffff:10.0.0.1", "10.0.0.1"},
		{"::ffff:127.0.0.1", "127.0.0.1"},
		{"2001:db8::1", "2001:db8::1"},
		{"not-an-ip", "not-an-ip"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.in), "in: %s", tt.in)
	}
}

func TestRemoteIPFromSocket(t *testing.T) {
	r := httptest.NewRequest("GET", "/server-ws", nil)
	r.RemoteAddr = "10.1.2.3:54321"

	assert.Equal(t, "10.1.2.3", RemoteIP(r, ""))
}

func TestRemoteIPHonorsTrustedHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/server-ws", nil)
	r.RemoteAddr = "10.1.2.3:54321"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2")

	assert.Equal(t, "203.0.113.9", RemoteIP(r, "X-Forwarded-For"))
}

func TestRemoteIPIgnoresHeaderWhenUntrusted(t *testing.T) {
	r := httptest.NewRequest("GET", "/server-ws", nil)
	r.RemoteAddr = "10.1.2.3:54321"
	r.Header.Set("X-Forwarded-For", "203.0.113.9")

	assert.Equal(t, "10.1.2.3", RemoteIP(r, ""))
}

func TestRemoteIPLoopbackCollapses(t *testing.T) {
	r := httptest.NewRequest("GET", "/server-ws", nil)
	r.RemoteAddr = "[::1]:54321"

	assert.Equal(t, "127.0.0.1", RemoteIP(r, ""))
}
