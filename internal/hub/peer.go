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
	"time"

	"github.com/google/uuid"
	"github.com/peerbeam/peerbeam/constant"
	"github.com/peerbeam/peerbeam/internal/naming"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Peer maintains the state of one connected client.
type Peer struct {
	Transporter

	// Read-only fields for concurrent safe.
	id           string
	ip           string
	name         naming.Name
	rtcSupported bool

	// Room back-links, guarded by the owning hub's mutex. For every entry
	// the room registry holds the reverse mapping.
	roomSecrets  []string
	publicRoomID string
	pairKey      string

	lastBeat     *atomic.Int64 // unix nano of the last pong
	disconnected *atomic.Bool
	keepAlive    *keepAlive
}

// NewPeer returns a peer bound to its transporter. The identity fields are
// fixed for the lifetime of the connection.
func NewPeer(transporter Transporter, id, ip string, name naming.Name, rtcSupported bool) *Peer {
	return &Peer{
		Transporter:  transporter,
		id:           id,
		ip:           ip,
		name:         name,
		rtcSupported: rtcSupported,
		lastBeat:     atomic.NewInt64(time.Now().UnixNano()),
		disconnected: atomic.NewBool(false),
	}
}

// ID returns the stable peer identifier.
func (p *Peer) ID() string {
	return p.id
}

// IP returns the canonical observed address, which doubles as the peer's
// ip-room key.
func (p *Peer) IP() string {
	return p.ip
}

// Name returns the derived identity pair.
func (p *Peer) Name() naming.Name {
	return p.name
}

// RTCSupported reports whether the client declared WebRTC support at
// upgrade time.
func (p *Peer) RTCSupported() bool {
	return p.rtcSupported
}

// Info returns the projection shared with other room members.
func (p *Peer) Info() PeerInfo {
	return PeerInfo{
		ID:           p.id,
		Name:         p.name,
		RTCSupported: p.rtcSupported,
	}
}

// LastBeat returns the wall time of the last pong.
func (p *Peer) LastBeat() time.Time {
	return time.Unix(0, p.lastBeat.Load())
}

// SetLastBeat records a pong acknowledgement.
func (p *Peer) SetLastBeat(t time.Time) {
	p.lastBeat.Store(t.UnixNano())
}

// send marshals v and enqueues it as a text frame. A closed or saturated
// connection drops the message: the peer is either gone already or so far
// behind that the keep-alive will take it down shortly.
func (p *Peer) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("Marshal outbound message failed", zap.Error(err))
		return
	}
	if err := p.WriteText(data); err != nil {
		zap.L().Debug("Drop outbound message", zap.String("peer", p.id), zap.Error(err))
	}
}

// hasRoomSecret reports whether the peer currently occupies the secret room.
func (p *Peer) hasRoomSecret(secret string) bool {
	for _, s := range p.roomSecrets {
		if s == secret {
			return true
		}
	}
	return false
}

// addRoomSecret appends a secret back-link, preserving insertion order.
// Duplicates are forbidden.
func (p *Peer) addRoomSecret(secret string) {
	if p.hasRoomSecret(secret) {
		return
	}
	p.roomSecrets = append(p.roomSecrets, secret)
}

// removeRoomSecret drops a secret back-link.
func (p *Peer) removeRoomSecret(secret string) {
	for i, s := range p.roomSecrets {
		if s == secret {
			p.roomSecrets = append(p.roomSecrets[:i], p.roomSecrets[i+1:]...)
			return
		}
	}
}

// IsPeerID reports whether s is a UUID-shaped identifier, the only form the
// hub routes to.
func IsPeerID(s string) bool {
	if len(s) != constant.PeerIDSize {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
