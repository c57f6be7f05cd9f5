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
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/gorilla/mux"
	"github.com/peerbeam/peerbeam/hub/config"
	"github.com/peerbeam/peerbeam/internal/hub"
	"go.uber.org/zap"
)

// Serve runs the hub and its embedding HTTP listener until ctx is canceled.
func Serve(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config) error {
	zap.L().Info("Hub server is starting up...")

	opts := hub.Options{
		WSFallback: cfg.WSFallback,
	}
	if cfg.RTCConfig != "" {
		opts.RTCConfig = json.RawMessage(cfg.RTCConfig)
	}
	if cfg.RateLimit != nil {
		opts.RateLimitAttempts = cfg.RateLimit.Attempts
		opts.RateLimitWindow = time.Duration(cfg.RateLimit.Window)
	}
	if cfg.Heartbeat != nil {
		opts.HeartbeatInterval = time.Duration(cfg.Heartbeat.Interval)
		opts.HeartbeatTimeoutFactor = cfg.Heartbeat.TimeoutFactor
	}

	h := hub.New(opts)
	ws := newWSServer(ctx, wg, h, cfg)

	router := mux.NewRouter()
	router.HandleFunc("/server-ws", ws.handleUpgrade)
	if cfg.WebRoot != "" {
		router.PathPrefix("/").Handler(gziphandler.GzipHandler(http.FileServer(http.Dir(cfg.WebRoot))))
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("Listener ready to close")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		h.Close()
	}()

	zap.L().Info("Hub server ready to serve", zap.String("addr", cfg.Addr()))

	var err error
	if cfg.TLS != nil && cfg.TLS.Cert != "" {
		err = srv.ListenAndServeTLS(cfg.TLS.Cert, cfg.TLS.Key)
	} else {
		err = srv.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
