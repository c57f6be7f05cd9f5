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

package logutil

import (
	"os"
	"strings"

	"github.com/peerbeam/peerbeam/constant"
	"go.uber.org/zap/zapcore"
)

// bits are used to check whether output verbose log.
var bits = 0

func init() {
	v, ok := os.LookupEnv(constant.EnvLogLevel)
	if ok {
		v = strings.ToLower(v)
		if v == "all" {
			EnableAll()
		} else {
			parts := strings.Split(v, ",")
			for _, p := range parts {
				p = strings.TrimSpace(p)
				switch p {
				case "room":
					Enable(DebugRoomEvent)
				case "relay":
					Enable(DebugRelayMessage)
				case "pairing":
					Enable(DebugPairing)
				case "heartbeat":
					Enable(DebugHeartbeat)
				}
			}
		}
	}
}

type Type byte

const (
	// DebugRoomEvent indicates room membership changes and peer notifications
	DebugRoomEvent Type = 0
	// DebugRelayMessage indicates text/binary frames relayed between peers
	DebugRelayMessage Type = 1
	// DebugPairing indicates pair-key allocation and redemption
	DebugPairing Type = 2
	// DebugHeartbeat indicates keep-alive pings and pong acknowledgements
	DebugHeartbeat Type = 3
)

// Enable enables the output of some types of verbose log.
func Enable(t Type) {
	bits |= 1 << t
}

func EnableAll() {
	for _, l := range []Type{DebugRoomEvent, DebugRelayMessage, DebugPairing, DebugHeartbeat} {
		Enable(l)
	}
}

// Level returns the log level corresponding to the verbosity level
func Level() zapcore.Level {
	if bits > 0 {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// IsEnableRoom checks if room membership debug logs enabled.
func IsEnableRoom() bool {
	return bits&(1<<DebugRoomEvent) > 0
}

// IsEnableRelay checks if relayed frame debug logs enabled.
func IsEnableRelay() bool {
	return bits&(1<<DebugRelayMessage) > 0
}

// IsEnablePairing checks if pairing debug logs enabled.
func IsEnablePairing() bool {
	return bits&(1<<DebugPairing) > 0
}

// IsEnableHeartbeat checks if keep-alive debug logs enabled.
func IsEnableHeartbeat() bool {
	return bits&(1<<DebugHeartbeat) > 0
}
