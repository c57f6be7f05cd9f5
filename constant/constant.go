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

package constant

import "time"

const EnvLogLevel = "PEERBEAM_LOG_VERBOSE"

// PeerIDCookie is the cookie that carries a client's stable peer identity
// across reconnections.
const PeerIDCookie = "peerid"

// HeaderXForwardedFor is the default reverse-proxy header consulted when the
// hub is configured to trust one.
const HeaderXForwardedFor = "X-Forwarded-For"

// Binary relay packet format:
// | recipient peer id (36 bytes ASCII) | room marker (1 byte) | secret (64 bytes, right padded) | payload |

const (
	BinaryRecipientSize  = 36
	BinaryRoomMarkerSize = 1
	BinarySecretSize     = 64
	BinaryHeaderSize     = BinaryRecipientSize + BinaryRoomMarkerSize + BinarySecretSize
)

// Room markers used in the binary relay header.
const (
	RoomMarkerIP     = 'i'
	RoomMarkerSecret = 's'
)

// PeerIDSize is the length of a UUID-shaped peer identifier.
const PeerIDSize = 36

// Room key shapes.
const (
	RoomSecretLength   = 256
	RoomSecretMinInput = 64
	RoomSecretMaxInput = 256
	PublicRoomIDLength = 5
	PairKeyLength      = 6
)

// MaxMessageSize bounds a single inbound frame. Large file partitions travel
// through the relay when the websocket fallback is active.
const MaxMessageSize = 100 << 20

// HeartbeatInterval is the keep-alive ping period. A peer whose last pong is
// older than HeartbeatTimeoutFactor intervals is considered gone.
const (
	HeartbeatInterval      = 2 * time.Second
	HeartbeatTimeoutFactor = 2
)

// Transfer parameters advertised to clients in the ws-config frame.
const (
	ChunkSize            = 10 * 1024 * 1024
	MaxParallelTransfers = 8
)

// Rate-limit defaults for the join-family messages.
const (
	RateLimitAttempts = 10
	RateLimitWindow   = 10 * time.Second
)
