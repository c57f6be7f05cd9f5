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

package hub

import (
	"strings"

	"github.com/peerbeam/peerbeam/constant"
	"github.com/peerbeam/peerbeam/pkg/logutil"
	"go.uber.org/zap"
)

// RelayBinary routes one binary frame. The routing prefix is fixed-length
// ASCII so the payload passes through without any re-framing:
//
//	| recipient id (36) | marker (1) | secret, right padded (64) | payload |
//
// Marker 'i' resolves to the sender's ip room; 's' to the secret carried in
// the header. Anything that does not resolve is dropped without a reply.
func (h *Hub) RelayBinary(sender *Peer, data []byte) {
	if !h.wsFallback {
		return
	}
	if len(data) < constant.BinaryHeaderSize {
		return
	}

	recipientID := string(data[:constant.BinaryRecipientSize])
	if !IsPeerID(recipientID) {
		return
	}

	var roomID string
	switch data[constant.BinaryRecipientSize] {
	case constant.RoomMarkerIP:
		roomID = sender.ip
	case constant.RoomMarkerSecret:
		secret := data[constant.BinaryRecipientSize+constant.BinaryRoomMarkerSize : constant.BinaryHeaderSize]
		roomID = strings.TrimRight(string(secret), "\x00 ")
	default:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	recipient, ok := room[recipientID]
	if !ok || recipient.Closed() {
		return
	}

	if logutil.IsEnableRelay() {
		zap.L().Debug("Relay binary frame",
			zap.String("from", sender.id),
			zap.String("to", recipientID),
			zap.Int("payload", len(data)-constant.BinaryHeaderSize))
	}

	if err := recipient.WriteBinary(data[constant.BinaryHeaderSize:]); err != nil {
		zap.L().Debug("Drop binary frame", zap.String("to", recipientID), zap.Error(err))
	}
}
