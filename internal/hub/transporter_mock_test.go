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
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/peerbeam/peerbeam/internal/naming"
	"go.uber.org/atomic"
)

// mockTransporter records outbound frames instead of touching a socket, so
// the registry and dispatcher can be exercised without network IO.
type mockTransporter struct {
	mu       sync.Mutex
	chRead   chan Frame
	texts    [][]byte
	binaries [][]byte
	closed   *atomic.Bool
}

func newMockTransporter() *mockTransporter {
	return &mockTransporter{
		chRead: make(chan Frame, 128),
		closed: atomic.NewBool(false),
	}
}

func (t *mockTransporter) ReadQueue() <-chan Frame {
	return t.chRead
}

func (t *mockTransporter) WriteText(payload []byte) error {
	if t.closed.Load() {
		return errors.New("cannot send message to closed transporter")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.texts = append(t.texts, append([]byte(nil), payload...))
	return nil
}

func (t *mockTransporter) WriteBinary(payload []byte) error {
	if t.closed.Load() {
		return errors.New("cannot send message to closed transporter")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.binaries = append(t.binaries, append([]byte(nil), payload...))
	return nil
}

func (t *mockTransporter) Read(context.Context) {}

func (t *mockTransporter) Write(context.Context) {}

func (t *mockTransporter) Closed() bool {
	return t.closed.Load()
}

func (t *mockTransporter) Close() error {
	if t.closed.Swap(true) {
		return errors.New("close a closed transporter")
	}
	close(t.chRead)
	return nil
}

// sentTexts decodes every recorded text frame.
func (t *mockTransporter) sentTexts() []map[string]interface{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(t.texts))
	for _, raw := range t.texts {
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// sentOfType filters recorded text frames by their type discriminant.
func (t *mockTransporter) sentOfType(typ string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, m := range t.sentTexts() {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

// sentTypes returns the type discriminants in send order.
func (t *mockTransporter) sentTypes() []string {
	var out []string
	for _, m := range t.sentTexts() {
		if typ, ok := m["type"].(string); ok {
			out = append(out, typ)
		}
	}
	return out
}

func (t *mockTransporter) sentBinaries() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.binaries))
	copy(out, t.binaries)
	return out
}

func (t *mockTransporter) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.texts = nil
	t.binaries = nil
}

const (
	peerIDA = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaa1"
	peerIDB = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbb1"
	peerIDC = "cccccccc-cccc-4ccc-8ccc-ccccccccccc1"
)

// newTestHub returns a hub with a generous heartbeat so background timers
// never interfere with registry assertions.
func newTestHub() *Hub {
	return New(Options{
		WSFallback:        true,
		HeartbeatInterval: time.Hour,
	})
}

// newTestPeer builds a peer on a mock transporter without registering it.
func newTestPeer(id, ip string) (*Peer, *mockTransporter) {
	trs := newMockTransporter()
	p := NewPeer(trs, id, ip, naming.Derive(id, "test-agent"), true)
	return p, trs
}

// handle drives one raw frame through the dispatcher.
func handle(h *Hub, p *Peer, raw string) error {
	return h.handler.Handle(p, []byte(raw))
}
