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
	"github.com/peerbeam/peerbeam/pkg/logutil"
	"go.uber.org/zap"
)

// Room type tags. The three namespaces share one registry map; the tag only
// travels in the join/leave notifications.
const (
	RoomTypeIP     = "ip"
	RoomTypeSecret = "secret"
	RoomTypePublic = "public-id"
)

// joinRoom adds peer to roomID and notifies the occupants. If the peer is
// already a member it is taken out first, so an observer of a reconnect
// never sees the stale peer-left land after the fresh peer-joined.
//
// Notifications go out before the membership insert: the joiner's peers
// snapshot must exclude itself and the joiner must not observe its own
// peer-joined.
func (h *Hub) joinRoom(p *Peer, roomType, roomID string) {
	if roomID == "" {
		return
	}

	if room, ok := h.rooms[roomID]; ok {
		if _, member := room[p.id]; member {
			h.leaveRoom(p, roomType, roomID, false)
		}
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = map[string]*Peer{}
	}
	room := h.rooms[roomID]

	if logutil.IsEnableRoom() {
		zap.L().Debug("Peer joins room",
			zap.String("peer", p.id),
			zap.String("roomType", roomType),
			zap.String("roomId", roomID))
	}

	joined := peerJoinedMessage{
		Type:     TypePeerJoined,
		Peer:     p.Info(),
		RoomType: roomType,
		RoomID:   roomID,
	}
	others := make([]PeerInfo, 0, len(room))
	for _, occupant := range room {
		occupant.send(joined)
		others = append(others, occupant.Info())
	}

	p.send(peersMessage{
		Type:     TypePeers,
		Peers:    others,
		RoomType: roomType,
		RoomID:   roomID,
	})

	room[p.id] = p

	switch roomType {
	case RoomTypeSecret:
		p.addRoomSecret(roomID)
	case RoomTypePublic:
		p.publicRoomID = roomID
	}
}

// leaveRoom removes peer from roomID. Leaving a room the peer does not
// occupy is a no-op. The last peer out deletes the room entry; otherwise
// the remaining occupants learn about the departure.
func (h *Hub) leaveRoom(p *Peer, roomType, roomID string, disconnect bool) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if _, member := room[p.id]; !member {
		return
	}

	delete(room, p.id)

	switch roomType {
	case RoomTypeSecret:
		p.removeRoomSecret(roomID)
	case RoomTypePublic:
		if p.publicRoomID == roomID {
			p.publicRoomID = ""
		}
	}

	if logutil.IsEnableRoom() {
		zap.L().Debug("Peer leaves room",
			zap.String("peer", p.id),
			zap.String("roomType", roomType),
			zap.String("roomId", roomID),
			zap.Bool("disconnect", disconnect))
	}

	if len(room) == 0 {
		delete(h.rooms, roomID)
		return
	}

	left := peerLeftMessage{
		Type:       TypePeerLeft,
		PeerID:     p.id,
		RoomType:   roomType,
		RoomID:     roomID,
		Disconnect: disconnect,
	}
	for _, occupant := range room {
		occupant.send(left)
	}
}

// deleteSecretRoom evicts every occupant of a secret room and tells each of
// them the secret is gone. The eviction order means later occupants still
// observe the earlier ones leave.
func (h *Hub) deleteSecretRoom(roomSecret string) {
	room, ok := h.rooms[roomSecret]
	if !ok {
		return
	}
	for _, occupant := range occupantsOf(room) {
		h.leaveRoom(occupant, RoomTypeSecret, roomSecret, false)
		occupant.send(secretRoomDeletedMessage{
			Type:       TypeSecretRoomDeleted,
			RoomSecret: roomSecret,
		})
	}
}

// occupantsOf snapshots a room's members so the caller can mutate the
// registry while iterating.
func occupantsOf(room map[string]*Peer) []*Peer {
	peers := make([]*Peer, 0, len(room))
	for _, p := range room {
		peers = append(peers, p)
	}
	return peers
}
