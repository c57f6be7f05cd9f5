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

// Package netutil resolves the network address a peer is observed from.
// The observed IP doubles as the peer's local-discovery room key, so two
// devices behind the same NAT must resolve to the same string.
package netutil

import (
	"net"
	"net/http"
	"strings"

	"inet.af/netaddr"
)

// RemoteIP returns the canonical observed IP of an upgrade request. When
// trustedProxyHeader is non-empty and the header is present, the first
// address listed there wins over the socket address.
func RemoteIP(r *http.Request, trustedProxyHeader string) string {
	if trustedProxyHeader != "" {
		if fwd := r.Header.Get(trustedProxyHeader); fwd != "" {
			first := fwd
			if idx := strings.IndexByte(fwd, ','); idx >= 0 {
				first = fwd[:idx]
			}
			if ip := Canonicalize(strings.TrimSpace(first)); ip != "" {
				return ip
			}
		}
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}
	return Canonicalize(host)
}

// Canonicalize normalizes an address string: 4-in-6 mapped addresses become
// dotted IPv4 and the IPv6 loopback becomes 127.0.0.1 so that a device
// reaching the hub over ::1 and one over 127.0.0.1 land in the same room.
// An unparseable address is returned unchanged so the registry still keys
// on something stable.
func Canonicalize(host string) string {
	ip, err := netaddr.ParseIP(host)
	if err != nil {
		return host
	}
	if ip.Is4in6() {
		ip = ip.Unmap()
	}
	if ip.IsLoopback() {
		return "127.0.0.1"
	}
	return ip.String()
}
