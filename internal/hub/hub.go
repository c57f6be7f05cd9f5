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

// Package hub implements the signaling and fallback-relay core: room
// membership, device pairing, message relay and per-peer liveness. All
// registry mutations happen under one mutex, so every observer of a room
// sees a total order of join/leave/relay events.
package hub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/peerbeam/peerbeam/constant"
	"github.com/peerbeam/peerbeam/pkg/logutil"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

// Options carries the tunable parts of a hub instance. The zero value is
// usable; missing fields fall back to the constants the protocol names.
type Options struct {
	// WSFallback enables relaying payload traffic (text and binary) through
	// the hub for peers that cannot connect directly.
	WSFallback bool

	// RTCConfig is the opaque blob pushed to clients in ws-config. The hub
	// never interprets it.
	RTCConfig json.RawMessage

	// RateLimitAttempts / RateLimitWindow bound pair-device-join and
	// join-public-room attempts per peer.
	RateLimitAttempts int
	RateLimitWindow   time.Duration

	// HeartbeatInterval is the ping period; a peer whose pong is older than
	// HeartbeatTimeoutFactor intervals is disconnected.
	HeartbeatInterval      time.Duration
	HeartbeatTimeoutFactor int
}

// Hub is the process-wide registry of peers, rooms and pair keys.
type Hub struct {
	wsFallback        bool
	rtcConfig         json.RawMessage
	heartbeatInterval time.Duration
	heartbeatFactor   int

	// salt is drawn once per process and mixed into the peer-id hash
	// clients use to recognize paired devices. Stability across restarts
	// is not required.
	salt []byte

	limiter *RateLimiter
	handler *Handler
	closed  *atomic.Bool

	mu       sync.Mutex
	rooms    map[string]map[string]*Peer
	pairKeys *pairKeyDirectory
}

// New returns a hub ready to accept peers.
func New(opts Options) *Hub {
	if opts.RateLimitAttempts <= 0 {
		opts.RateLimitAttempts = constant.RateLimitAttempts
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = constant.RateLimitWindow
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = constant.HeartbeatInterval
	}
	if opts.HeartbeatTimeoutFactor <= 0 {
		opts.HeartbeatTimeoutFactor = constant.HeartbeatTimeoutFactor
	}
	if len(opts.RTCConfig) == 0 {
		opts.RTCConfig = json.RawMessage(`{"iceServers":[{"urls":"stun:stun.l.google.com:19302"}]}`)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}

	h := &Hub{
		wsFallback:        opts.WSFallback,
		rtcConfig:         opts.RTCConfig,
		heartbeatInterval: opts.HeartbeatInterval,
		heartbeatFactor:   opts.HeartbeatTimeoutFactor,
		salt:              salt,
		limiter:           NewRateLimiter(opts.RateLimitAttempts, opts.RateLimitWindow),
		closed:            atomic.NewBool(false),
		rooms:             map[string]map[string]*Peer{},
		pairKeys:          newPairKeyDirectory(),
	}
	h.handler = newHandler(h)
	return h
}

// HeartbeatInterval returns the configured ping period.
func (h *Hub) HeartbeatInterval() time.Duration {
	return h.heartbeatInterval
}

// Handler returns the message dispatcher.
func (h *Hub) Handler() *Handler {
	return h.handler
}

// PeerIDHash returns the salted hash a client embeds in pair invitations.
func (h *Hub) PeerIDHash(peerID string) string {
	sum := sha3.Sum256(append(append([]byte{}, h.salt...), peerID...))
	return hex.EncodeToString(sum[:])
}

// Register announces a freshly accepted peer: the two initial config frames
// go out first, then the keep-alive schedule starts. The peer is not in any
// room yet; the client decides which rooms to join.
func (h *Hub) Register(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p.send(wsConfigMessage{
		Type: TypeWSConfig,
		WSConfig: wsConfigBody{
			RTCConfig:            h.rtcConfig,
			WSFallback:           h.wsFallback,
			ChunkSize:            constant.ChunkSize,
			MaxParallelTransfers: constant.MaxParallelTransfers,
			DisableThrottling:    true,
		},
	})
	p.send(displayNameMessage{
		Type:        TypeDisplayName,
		DisplayName: p.name.DisplayName,
		DeviceName:  p.name.DeviceName,
		PeerID:      p.id,
		PeerIDHash:  h.PeerIDHash(p.id),
	})

	p.SetLastBeat(time.Now())
	p.keepAlive = newKeepAlive(h, p, h.heartbeatInterval, h.heartbeatFactor)
	go p.keepAlive.run()

	zap.L().Info("Peer connected",
		zap.String("peer", p.id),
		zap.String("ip", p.ip),
		zap.Bool("rtcSupported", p.rtcSupported))
}

// ServePeer consumes the peer's inbound frames until the connection or the
// context dies, then runs the disconnect cascade.
func (h *Hub) ServePeer(ctx context.Context, p *Peer) {
	defer h.Disconnect(p)

	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-p.ReadQueue():
			if !ok {
				return
			}
			if f.Binary {
				h.RelayBinary(p, f.Payload)
				continue
			}
			if err := h.handler.Handle(p, f.Payload); err != nil {
				zap.L().Error("Handle message failed", zap.String("peer", p.id), zap.Error(err))
			}
		}
	}
}

// Disconnect runs the full cleanup cascade for a peer.
func (h *Hub) Disconnect(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disconnectLocked(p)
}

// disconnectLocked tears a peer down in the mandated order: pair key first,
// then the keep-alive record, then every room the peer occupies, and only
// after all peer-left events are out, the socket itself.
func (h *Hub) disconnectLocked(p *Peer) {
	if p.disconnected.Swap(true) {
		return
	}

	if p.pairKey != "" {
		h.pairKeys.remove(p.pairKey)
	}

	if p.keepAlive != nil {
		p.keepAlive.Stop()
	}

	h.leaveRoom(p, RoomTypeIP, p.ip, true)
	for _, secret := range append([]string(nil), p.roomSecrets...) {
		h.leaveRoom(p, RoomTypeSecret, secret, true)
	}
	if p.publicRoomID != "" {
		h.leaveRoom(p, RoomTypePublic, p.publicRoomID, true)
	}

	_ = p.Transporter.Close()

	zap.L().Info("Peer disconnected", zap.String("peer", p.id), zap.String("ip", p.ip))
}

// relay forwards a text message to the addressee in the resolved room. The
// to field is replaced by a sender tag; everything else passes through
// verbatim. Unresolvable routes are dropped silently.
func (h *Hub) relay(sender *Peer, msg *envelope) {
	roomID := msg.RoomID
	if msg.RoomType == RoomTypeIP {
		roomID = sender.ip
	}
	if !IsPeerID(msg.To) {
		return
	}

	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	recipient, ok := room[msg.To]
	if !ok {
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(msg.raw, &payload); err != nil {
		return
	}
	delete(payload, "to")
	payload["sender"] = map[string]interface{}{
		"id":           sender.id,
		"rtcSupported": sender.rtcSupported,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	if logutil.IsEnableRelay() {
		zap.L().Debug("Relay message",
			zap.String("type", msg.Type),
			zap.String("from", sender.id),
			zap.String("to", recipient.id))
	}

	if err := recipient.WriteText(data); err != nil {
		zap.L().Debug("Drop relayed message", zap.String("to", recipient.id), zap.Error(err))
	}
}

// Close disconnects every peer. Used on shutdown.
func (h *Hub) Close() {
	if h.closed.Swap(true) {
		return
	}

	h.mu.Lock()
	peers := map[string]*Peer{}
	for _, room := range h.rooms {
		for id, p := range room {
			peers[id] = p
		}
	}
	h.mu.Unlock()

	for _, p := range peers {
		h.Disconnect(p)
	}
}
