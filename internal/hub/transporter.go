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
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/peerbeam/peerbeam/constant"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const writeBufferSize = 128

const writeTimeout = 10 * time.Second

// Frame is a single websocket message: UTF-8 JSON when Binary is false,
// the fixed-header relay format otherwise.
type Frame struct {
	Binary  bool
	Payload []byte
}

// Transporter interface, together with wsTransporter struct, is an
// abstraction of network IO so that the network behaviors could be mocked,
// and therefore the peer and hub could be better tested.
type Transporter interface {
	ReadQueue() <-chan Frame
	WriteText(payload []byte) error
	WriteBinary(payload []byte) error
	Read(ctx context.Context)
	Write(ctx context.Context)
	Closed() bool
	Close() error
}

type wsTransporter struct {
	conn          *websocket.Conn
	chRead        chan Frame
	chWrite       chan Frame
	chTermination chan struct{}
	readDeadline  time.Duration
	closed        *atomic.Bool
}

// NewWSTransporter wraps an upgraded websocket connection. The read deadline
// is derived from the heartbeat interval so a fully silent connection is
// torn down even if the keep-alive goroutine is wedged behind it.
func NewWSTransporter(conn *websocket.Conn, heartbeatInterval time.Duration) Transporter {
	conn.SetReadLimit(constant.MaxMessageSize)
	conn.EnableWriteCompression(false)
	return &wsTransporter{
		conn:          conn,
		chRead:        make(chan Frame, writeBufferSize),
		chWrite:       make(chan Frame, writeBufferSize),
		chTermination: make(chan struct{}),
		readDeadline:  3 * heartbeatInterval,
		closed:        atomic.NewBool(false),
	}
}

func (t *wsTransporter) ReadQueue() <-chan Frame {
	return t.chRead
}

func (t *wsTransporter) WriteText(payload []byte) error {
	return t.enqueue(Frame{Binary: false, Payload: payload})
}

func (t *wsTransporter) WriteBinary(payload []byte) error {
	return t.enqueue(Frame{Binary: true, Payload: payload})
}

func (t *wsTransporter) enqueue(f Frame) error {
	if t.closed.Load() {
		return errors.New("cannot send message to closed transporter")
	}
	select {
	case t.chWrite <- f:
		return nil
	default:
		return fmt.Errorf("write buffer exceed: %s", t.conn.RemoteAddr())
	}
}

func (t *wsTransporter) Read(ctx context.Context) {
	defer close(t.chRead)

	go func() {
		select {
		case <-ctx.Done():
			_ = t.Close()
		case <-t.chTermination:
		}
	}()

	defer t.Close()

	for {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.readDeadline))
		typ, data, err := t.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Debug("Read connection failed", zap.Error(err))
			}
			return
		}

		switch typ {
		case websocket.TextMessage:
			t.chRead <- Frame{Binary: false, Payload: data}
		case websocket.BinaryMessage:
			t.chRead <- Frame{Binary: true, Payload: data}
		}
	}
}

func (t *wsTransporter) Write(ctx context.Context) {
	for {
		select {
		case f := <-t.chWrite:
			messageType := websocket.TextMessage
			if f.Binary {
				messageType = websocket.BinaryMessage
			}
			_ = t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := t.conn.WriteMessage(messageType, f.Payload); err != nil {
				zap.L().Debug("Write message failed", zap.Error(err))
				_ = t.Close()
				return
			}

		case <-t.chTermination:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (t *wsTransporter) Closed() bool {
	return t.closed.Load()
}

func (t *wsTransporter) Close() error {
	if t.closed.Swap(true) {
		return errors.New("close a closed transporter")
	}
	close(t.chTermination)
	return t.conn.Close()
}
