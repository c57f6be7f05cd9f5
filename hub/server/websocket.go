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

package server

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/peerbeam/peerbeam/constant"
	"github.com/peerbeam/peerbeam/hub/config"
	"github.com/peerbeam/peerbeam/internal/hub"
	"github.com/peerbeam/peerbeam/internal/naming"
	"github.com/peerbeam/peerbeam/internal/netutil"
	"github.com/peerbeam/peerbeam/version"
	"go.uber.org/zap"
)

// wsServer accepts upgrade requests and hands connected peers to the hub.
type wsServer struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	hub      *hub.Hub
	cfg      *config.Config
	upgrader websocket.Upgrader
}

func newWSServer(ctx context.Context, wg *sync.WaitGroup, h *hub.Hub, cfg *config.Config) *wsServer {
	return &wsServer{
		ctx: ctx,
		wg:  wg,
		hub: h,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			EnableCompression: false,
			// The room-secret knowledge proof is the authorization model;
			// the origin carries no trust.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// handleUpgrade builds a peer from the upgrade request and starts its
// transport pumps. The identity cookie is minted here when absent so it
// rides back on the 101 response.
func (s *wsServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if announced := r.URL.Query().Get("version"); announced != "" && !version.IsClientSupported(announced) {
		zap.L().Warn("Client announced unsupported version", zap.String("version", announced))
	}

	peerID, minted := peerIDFromRequest(r)

	var responseHeader http.Header
	if minted {
		cookie := &http.Cookie{
			Name:     constant.PeerIDCookie,
			Value:    peerID,
			Path:     "/",
			SameSite: http.SameSiteStrictMode,
		}
		responseHeader = http.Header{"Set-Cookie": {cookie.String()}}
	}

	conn, err := s.upgrader.Upgrade(w, r, responseHeader)
	if err != nil {
		zap.L().Error("Upgrade connection failed", zap.Error(err))
		return
	}

	// Low-latency transport knobs: signaling messages are tiny and the
	// relay path is throughput-bound either way.
	if tcpConn, ok := conn.UnderlyingConn().(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
		_ = tcpConn.SetKeepAlive(true)
	}

	ip := netutil.RemoteIP(r, s.cfg.TrustedProxyHeader)
	name := naming.Derive(peerID, r.UserAgent())
	rtcSupported := r.URL.Query().Get("webrtc_supported") == "true"

	trans := hub.NewWSTransporter(conn, s.hub.HeartbeatInterval())
	peer := hub.NewPeer(trans, peerID, ip, name, rtcSupported)

	s.wg.Add(3)
	go func() { defer s.wg.Done(); trans.Read(s.ctx) }()
	go func() { defer s.wg.Done(); trans.Write(s.ctx) }()

	s.hub.Register(peer)
	go func() { defer s.wg.Done(); s.hub.ServePeer(s.ctx, peer) }()
}

// peerIDFromRequest extracts the identity cookie, minting a fresh id when
// the cookie is absent or malformed. The second return reports a mint.
func peerIDFromRequest(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(constant.PeerIDCookie); err == nil {
		if hub.IsPeerID(cookie.Value) {
			return cookie.Value, false
		}
	}
	return uuid.New().String(), true
}
