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
	"encoding/json"
	"regexp"
	"time"

	"github.com/peerbeam/peerbeam/pkg/logutil"
	"go.uber.org/zap"
)

type (
	// Callback is invoked for one inbound message type. The hub mutex is
	// held for the duration of the call.
	Callback func(p *Peer, msg *envelope) error

	// Handler routes decoded text frames to the registered callbacks.
	Handler struct {
		hub       *Hub
		callbacks map[string]Callback
	}
)

// roomSecretRe is the shape of client-supplied secret-room keys. Anything
// else in a room-secrets list is discarded.
var roomSecretRe = regexp.MustCompile(`^[\x00-\x7F]{64,256}$`)

// newHandler generates a Handler with all protocol callbacks registered.
func newHandler(h *Hub) *Handler {
	hd := &Handler{
		hub:       h,
		callbacks: map[string]Callback{},
	}
	hd.On(TypeDisconnect, hd.onDisconnect)
	hd.On(TypePong, hd.onPong)
	hd.On(TypeJoinIPRoom, hd.onJoinIPRoom)
	hd.On(TypeRoomSecrets, hd.onRoomSecrets)
	hd.On(TypeRoomSecretsDeleted, hd.onRoomSecretsDeleted)
	hd.On(TypePairDeviceInitiate, hd.onPairDeviceInitiate)
	hd.On(TypePairDeviceJoin, hd.onPairDeviceJoin)
	hd.On(TypePairDeviceCancel, hd.onPairDeviceCancel)
	hd.On(TypeRegenerateRoomSecret, hd.onRegenerateRoomSecret)
	hd.On(TypeCreatePublicRoom, hd.onCreatePublicRoom)
	hd.On(TypeJoinPublicRoom, hd.onJoinPublicRoom)
	hd.On(TypeLeavePublicRoom, hd.onLeavePublicRoom)
	hd.On(TypeSignal, hd.onSignal)
	return hd
}

// On registers a callback function for a message type.
func (hd *Handler) On(typ string, cb Callback) {
	hd.callbacks[typ] = cb
}

// Handle decodes one text frame and dispatches it under the hub mutex.
// Malformed JSON and unknown types are dropped; only the relay family is
// forwarded without a registered callback.
func (hd *Handler) Handle(p *Peer, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		zap.L().Warn("Drop malformed message", zap.String("peer", p.id), zap.Error(err))
		return nil
	}
	env.raw = raw

	hd.hub.mu.Lock()
	defer hd.hub.mu.Unlock()

	cb, ok := hd.callbacks[env.Type]
	if !ok {
		if _, relayed := relayTypes[env.Type]; relayed && hd.hub.wsFallback {
			hd.hub.relay(p, &env)
		}
		return nil
	}

	return cb(p, &env)
}

func (hd *Handler) onDisconnect(p *Peer, _ *envelope) error {
	hd.hub.disconnectLocked(p)
	return nil
}

func (hd *Handler) onPong(p *Peer, _ *envelope) error {
	if logutil.IsEnableHeartbeat() {
		zap.L().Debug("Pong", zap.String("peer", p.id))
	}
	p.SetLastBeat(time.Now())
	return nil
}

func (hd *Handler) onJoinIPRoom(p *Peer, _ *envelope) error {
	hd.hub.joinRoom(p, RoomTypeIP, p.ip)
	return nil
}

func (hd *Handler) onRoomSecrets(p *Peer, msg *envelope) error {
	for _, secret := range msg.RoomSecrets {
		if !roomSecretRe.MatchString(secret) {
			continue
		}
		hd.hub.joinRoom(p, RoomTypeSecret, secret)
	}
	return nil
}

func (hd *Handler) onRoomSecretsDeleted(p *Peer, msg *envelope) error {
	for _, secret := range msg.RoomSecrets {
		hd.hub.deleteSecretRoom(secret)
	}
	return nil
}

func (hd *Handler) onPairDeviceInitiate(p *Peer, _ *envelope) error {
	roomSecret := randomRoomSecret()
	pairKey := hd.hub.pairKeys.allocate(roomSecret, p)

	if logutil.IsEnablePairing() {
		zap.L().Debug("Pair key allocated", zap.String("peer", p.id), zap.String("pairKey", pairKey))
	}

	p.send(pairDeviceInitiatedMessage{
		Type:       TypePairDeviceInitiated,
		RoomSecret: roomSecret,
		PairKey:    pairKey,
	})
	hd.hub.joinRoom(p, RoomTypeSecret, roomSecret)
	return nil
}

func (hd *Handler) onPairDeviceJoin(p *Peer, msg *envelope) error {
	if !hd.hub.limiter.Allow(p.id) {
		p.send(typeOnlyMessage{Type: TypeJoinKeyRateLimit})
		return nil
	}

	entry := hd.hub.pairKeys.lookup(msg.PairKey)
	if entry == nil || entry.creator.id == p.id {
		p.send(typeOnlyMessage{Type: TypePairDeviceJoinInvalid})
		return nil
	}

	creator := entry.creator
	roomSecret := entry.roomSecret
	hd.hub.pairKeys.remove(msg.PairKey)

	if logutil.IsEnablePairing() {
		zap.L().Debug("Pair key redeemed",
			zap.String("creator", creator.id),
			zap.String("joiner", p.id))
	}

	creator.send(pairDeviceJoinedMessage{
		Type:       TypePairDeviceJoined,
		RoomSecret: roomSecret,
		PeerID:     p.id,
	})
	p.send(pairDeviceJoinedMessage{
		Type:       TypePairDeviceJoined,
		RoomSecret: roomSecret,
		PeerID:     creator.id,
	})
	hd.hub.joinRoom(p, RoomTypeSecret, roomSecret)
	return nil
}

func (hd *Handler) onPairDeviceCancel(p *Peer, _ *envelope) error {
	if p.pairKey == "" {
		return nil
	}
	pairKey := p.pairKey
	hd.hub.pairKeys.remove(pairKey)
	p.send(pairDeviceCanceledMessage{
		Type:    TypePairDeviceCanceled,
		PairKey: pairKey,
	})
	return nil
}

// onRegenerateRoomSecret swaps a secret out from under its room. The old
// room is deleted without peer-left events; members re-join through a
// room-secrets round-trip once they have stored the replacement.
func (hd *Handler) onRegenerateRoomSecret(p *Peer, msg *envelope) error {
	room, ok := hd.hub.rooms[msg.RoomSecret]
	if !ok {
		return nil
	}

	newSecret := randomRoomSecret()
	regenerated := roomSecretRegeneratedMessage{
		Type:          TypeRoomSecretRegenerated,
		OldRoomSecret: msg.RoomSecret,
		NewRoomSecret: newSecret,
	}
	for _, occupant := range room {
		occupant.send(regenerated)
		occupant.removeRoomSecret(msg.RoomSecret)
	}
	delete(hd.hub.rooms, msg.RoomSecret)
	return nil
}

func (hd *Handler) onCreatePublicRoom(p *Peer, _ *envelope) error {
	roomID := randomPublicRoomID()
	for _, taken := hd.hub.rooms[roomID]; taken; _, taken = hd.hub.rooms[roomID] {
		roomID = randomPublicRoomID()
	}

	if p.publicRoomID != "" {
		hd.hub.leaveRoom(p, RoomTypePublic, p.publicRoomID, false)
	}

	p.send(publicRoomCreatedMessage{
		Type:   TypePublicRoomCreated,
		RoomID: roomID,
	})
	hd.hub.joinRoom(p, RoomTypePublic, roomID)
	return nil
}

func (hd *Handler) onJoinPublicRoom(p *Peer, msg *envelope) error {
	if !hd.hub.limiter.Allow(p.id) {
		p.send(typeOnlyMessage{Type: TypeJoinKeyRateLimit})
		return nil
	}

	if _, exists := hd.hub.rooms[msg.PublicRoomID]; !exists && !msg.CreateIfInvalid {
		p.send(publicRoomIDInvalidMessage{
			Type:         TypePublicRoomIDInvalid,
			PublicRoomID: msg.PublicRoomID,
		})
		return nil
	}

	if p.publicRoomID != "" {
		hd.hub.leaveRoom(p, RoomTypePublic, p.publicRoomID, false)
	}
	hd.hub.joinRoom(p, RoomTypePublic, msg.PublicRoomID)
	return nil
}

func (hd *Handler) onLeavePublicRoom(p *Peer, _ *envelope) error {
	if p.publicRoomID != "" {
		hd.hub.leaveRoom(p, RoomTypePublic, p.publicRoomID, false)
	}
	p.send(typeOnlyMessage{Type: TypePublicRoomLeft})
	return nil
}

func (hd *Handler) onSignal(p *Peer, msg *envelope) error {
	hd.hub.relay(p, msg)
	return nil
}
