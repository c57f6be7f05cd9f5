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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinIPRoomExchangesSnapshots(t *testing.T) {
	h := newTestHub()
	peerA, trsA := newTestPeer(peerIDA, "10.0.0.1")
	peerB, trsB := newTestPeer(peerIDB, "10.0.0.1")

	require.Nil(t, handle(h, peerA, `{"type":"join-ip-room"}`))

	// First joiner sees an empty room.
	peersA := trsA.sentOfType(TypePeers)
	require.Len(t, peersA, 1)
	assert.Empty(t, peersA[0]["peers"])
	assert.Equal(t, "ip", peersA[0]["roomType"])
	assert.Equal(t, "10.0.0.1", peersA[0]["roomId"])

	require.Nil(t, handle(h, peerB, `{"type":"join-ip-room"}`))

	// The second joiner's snapshot carries A and nothing else.
	peersB := trsB.sentOfType(TypePeers)
	require.Len(t, peersB, 1)
	infos := peersB[0]["peers"].([]interface{})
	require.Len(t, infos, 1)
	assert.Equal(t, peerIDA, infos[0].(map[string]interface{})["id"])

	// A observes B's arrival exactly once.
	joined := trsA.sentOfType(TypePeerJoined)
	require.Len(t, joined, 1)
	info := joined[0]["peer"].(map[string]interface{})
	assert.Equal(t, peerIDB, info["id"])
	assert.Equal(t, true, info["rtcSupported"])

	// B never sees its own peer-joined.
	assert.Empty(t, trsB.sentOfType(TypePeerJoined))
}

func TestRoomMembershipSymmetry(t *testing.T) {
	h := newTestHub()
	p, _ := newTestPeer(peerIDA, "10.0.0.1")
	secret := strings.Repeat("s", 64)

	require.Nil(t, handle(h, p, `{"type":"join-ip-room"}`))
	require.Nil(t, handle(h, p, `{"type":"room-secrets","roomSecrets":["`+secret+`"]}`))
	require.Nil(t, handle(h, p, `{"type":"create-public-room"}`))

	h.mu.Lock()
	defer h.mu.Unlock()

	_, inIP := h.rooms["10.0.0.1"][p.id]
	assert.True(t, inIP)

	require.True(t, p.hasRoomSecret(secret))
	_, inSecret := h.rooms[secret][p.id]
	assert.True(t, inSecret)

	require.NotEmpty(t, p.publicRoomID)
	_, inPublic := h.rooms[p.publicRoomID][p.id]
	assert.True(t, inPublic)
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	h := newTestHub()
	p, _ := newTestPeer(peerIDA, "10.0.0.1")

	require.Nil(t, handle(h, p, `{"type":"join-ip-room"}`))

	h.mu.Lock()
	h.leaveRoom(p, RoomTypeIP, "10.0.0.1", false)
	_, exists := h.rooms["10.0.0.1"]
	h.mu.Unlock()

	assert.False(t, exists)
}

func TestLeaveIsIdempotent(t *testing.T) {
	h := newTestHub()
	peerA, _ := newTestPeer(peerIDA, "10.0.0.1")
	peerB, trsB := newTestPeer(peerIDB, "10.0.0.1")

	require.Nil(t, handle(h, peerA, `{"type":"join-ip-room"}`))
	require.Nil(t, handle(h, peerB, `{"type":"join-ip-room"}`))

	h.mu.Lock()
	h.leaveRoom(peerA, RoomTypeIP, "10.0.0.1", false)
	h.leaveRoom(peerA, RoomTypeIP, "10.0.0.1", false)
	h.mu.Unlock()

	// B saw exactly one departure; the second leave was a no-op.
	assert.Len(t, trsB.sentOfType(TypePeerLeft), 1)

	h.mu.Lock()
	_, member := h.rooms["10.0.0.1"][peerB.id]
	h.mu.Unlock()
	assert.True(t, member)
}

// A reconnecting peer must never leave a stale peer-left behind the fresh
// peer-joined in an observer's stream.
func TestRejoinEmitsLeaveBeforeJoin(t *testing.T) {
	h := newTestHub()
	peerA, _ := newTestPeer(peerIDA, "10.0.0.1")
	observer, trsO := newTestPeer(peerIDB, "10.0.0.1")

	require.Nil(t, handle(h, observer, `{"type":"join-ip-room"}`))
	require.Nil(t, handle(h, peerA, `{"type":"join-ip-room"}`))
	require.Nil(t, handle(h, peerA, `{"type":"join-ip-room"}`))

	var events []string
	for _, typ := range trsO.sentTypes() {
		if typ == TypePeerJoined || typ == TypePeerLeft {
			events = append(events, typ)
		}
	}
	assert.Equal(t, []string{TypePeerJoined, TypePeerLeft, TypePeerJoined}, events)
}

func TestDeleteSecretRoomEvictsAllOccupants(t *testing.T) {
	h := newTestHub()
	secret := strings.Repeat("k", 64)
	peerA, trsA := newTestPeer(peerIDA, "10.0.0.1")
	peerB, trsB := newTestPeer(peerIDB, "10.0.0.2")

	join := `{"type":"room-secrets","roomSecrets":["` + secret + `"]}`
	require.Nil(t, handle(h, peerA, join))
	require.Nil(t, handle(h, peerB, join))

	require.Nil(t, handle(h, peerA, `{"type":"room-secrets-deleted","roomSecrets":["`+secret+`"]}`))

	for _, trs := range []*mockTransporter{trsA, trsB} {
		deleted := trs.sentOfType(TypeSecretRoomDeleted)
		require.Len(t, deleted, 1)
		assert.Equal(t, secret, deleted[0]["roomSecret"])
	}

	h.mu.Lock()
	_, exists := h.rooms[secret]
	h.mu.Unlock()
	assert.False(t, exists)
	assert.False(t, peerA.hasRoomSecret(secret))
	assert.False(t, peerB.hasRoomSecret(secret))
}

func TestPublicRoomAtMostOne(t *testing.T) {
	h := newTestHub()
	p, trs := newTestPeer(peerIDA, "10.0.0.1")

	require.Nil(t, handle(h, p, `{"type":"create-public-room"}`))
	first := p.publicRoomID
	require.Len(t, first, 5)

	require.Nil(t, handle(h, p, `{"type":"join-public-room","publicRoomId":"zzz99","createIfInvalid":true}`))

	assert.Equal(t, "zzz99", p.publicRoomID)

	h.mu.Lock()
	_, stale := h.rooms[first]
	h.mu.Unlock()
	assert.False(t, stale)

	created := trs.sentOfType(TypePublicRoomCreated)
	require.Len(t, created, 1)
	assert.Equal(t, first, created[0]["roomId"])
}

func TestLeavePublicRoom(t *testing.T) {
	h := newTestHub()
	p, trs := newTestPeer(peerIDA, "10.0.0.1")

	require.Nil(t, handle(h, p, `{"type":"join-public-room","publicRoomId":"abc12","createIfInvalid":true}`))
	require.Equal(t, "abc12", p.publicRoomID)

	require.Nil(t, handle(h, p, `{"type":"leave-public-room"}`))

	assert.Empty(t, p.publicRoomID)
	assert.Len(t, trs.sentOfType(TypePublicRoomLeft), 1)

	h.mu.Lock()
	_, exists := h.rooms["abc12"]
	h.mu.Unlock()
	assert.False(t, exists)
}
