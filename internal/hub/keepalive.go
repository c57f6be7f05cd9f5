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
	"time"

	"github.com/peerbeam/peerbeam/pkg/logutil"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// keepAlive drives the ping schedule of one peer. A single timer is
// rescheduled on every tick; Stop cancels whatever is pending. The record
// co-terminates with the peer: the hub stops it inside the disconnect
// cascade, and a timeout-triggered disconnect stops it from the inside.
type keepAlive struct {
	hub      *Hub
	peer     *Peer
	interval time.Duration
	timeout  time.Duration
	timer    *time.Timer
	chStop   chan struct{}
	stopped  *atomic.Bool
}

func newKeepAlive(h *Hub, p *Peer, interval time.Duration, timeoutFactor int) *keepAlive {
	return &keepAlive{
		hub:      h,
		peer:     p,
		interval: interval,
		timeout:  time.Duration(timeoutFactor) * interval,
		timer:    time.NewTimer(interval),
		chStop:   make(chan struct{}),
		stopped:  atomic.NewBool(false),
	}
}

// run is the per-peer supervisor loop. On each tick it checks the pong
// freshness, disconnects a silent peer, and otherwise pings and reschedules.
func (k *keepAlive) run() {
	defer k.timer.Stop()

	for {
		select {
		case <-k.timer.C:
			if time.Since(k.peer.LastBeat()) > k.timeout {
				zap.L().Info("Peer missed heartbeat",
					zap.String("peer", k.peer.ID()),
					zap.Time("lastBeat", k.peer.LastBeat()))
				k.hub.Disconnect(k.peer)
				return
			}

			if logutil.IsEnableHeartbeat() {
				zap.L().Debug("Ping peer", zap.String("peer", k.peer.ID()))
			}
			k.peer.send(pingMessage{Type: TypePing})
			k.timer.Reset(k.interval)

		case <-k.chStop:
			return
		}
	}
}

// Stop cancels the schedule. Safe to call more than once and from the
// supervisor's own disconnect path.
func (k *keepAlive) Stop() {
	if k.stopped.Swap(true) {
		return
	}
	close(k.chStop)
}
