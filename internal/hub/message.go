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

	"github.com/peerbeam/peerbeam/internal/naming"
)

// Inbound message types handled by the dispatcher.
const (
	TypeDisconnect           = "disconnect"
	TypePong                 = "pong"
	TypeJoinIPRoom           = "join-ip-room"
	TypeRoomSecrets          = "room-secrets"
	TypeRoomSecretsDeleted   = "room-secrets-deleted"
	TypePairDeviceInitiate   = "pair-device-initiate"
	TypePairDeviceJoin       = "pair-device-join"
	TypePairDeviceCancel     = "pair-device-cancel"
	TypeRegenerateRoomSecret = "regenerate-room-secret"
	TypeCreatePublicRoom     = "create-public-room"
	TypeJoinPublicRoom       = "join-public-room"
	TypeLeavePublicRoom      = "leave-public-room"
	TypeSignal               = "signal"
)

// Outbound message types.
const (
	TypeWSConfig                = "ws-config"
	TypeDisplayName             = "display-name"
	TypePing                    = "ping"
	TypePeers                   = "peers"
	TypePeerJoined              = "peer-joined"
	TypePeerLeft                = "peer-left"
	TypePairDeviceInitiated     = "pair-device-initiated"
	TypePairDeviceJoined        = "pair-device-joined"
	TypePairDeviceCanceled      = "pair-device-canceled"
	TypePairDeviceJoinInvalid   = "pair-device-join-key-invalid"
	TypeJoinKeyRateLimit        = "join-key-rate-limit"
	TypeSecretRoomDeleted       = "secret-room-deleted"
	TypeRoomSecretRegenerated   = "room-secret-regenerated"
	TypePublicRoomCreated       = "public-room-created"
	TypePublicRoomIDInvalid     = "public-room-id-invalid"
	TypePublicRoomLeft          = "public-room-left"
)

// relayTypes are payload messages forwarded between peers through the hub
// when the websocket fallback is active. The hub never inspects their
// contents beyond the routing fields.
var relayTypes = map[string]struct{}{
	"request":                   {},
	"header":                    {},
	"partition":                 {},
	"partition-received":        {},
	"progress":                  {},
	"files-transfer-response":   {},
	"file-transfer-complete":    {},
	"message-transfer-complete": {},
	"text":                      {},
	"display-name-changed":      {},
	"ws-chunk":                  {},
	"ws-chunk-binary":           {},
}

// envelope is the decoded view of an inbound text frame. Only the routing
// and command fields are typed; raw keeps the original bytes so relayed
// messages are forwarded verbatim.
type envelope struct {
	Type            string   `json:"type"`
	To              string   `json:"to,omitempty"`
	RoomType        string   `json:"roomType,omitempty"`
	RoomID          string   `json:"roomId,omitempty"`
	RoomSecret      string   `json:"roomSecret,omitempty"`
	RoomSecrets     []string `json:"roomSecrets,omitempty"`
	PairKey         string   `json:"pairKey,omitempty"`
	PublicRoomID    string   `json:"publicRoomId,omitempty"`
	CreateIfInvalid bool     `json:"createIfInvalid,omitempty"`

	raw []byte
}

// PeerInfo is the projection of a peer shared with other room members.
type PeerInfo struct {
	ID           string      `json:"id"`
	Name         naming.Name `json:"name"`
	RTCSupported bool        `json:"rtcSupported"`
}

type wsConfigBody struct {
	RTCConfig            json.RawMessage `json:"rtcConfig"`
	WSFallback           bool            `json:"wsFallback"`
	ChunkSize            int             `json:"chunkSize"`
	MaxParallelTransfers int             `json:"maxParallelTransfers"`
	DisableThrottling    bool            `json:"disableThrottling"`
}

type wsConfigMessage struct {
	Type     string       `json:"type"`
	WSConfig wsConfigBody `json:"wsConfig"`
}

type displayNameMessage struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName"`
	DeviceName  string `json:"deviceName"`
	PeerID      string `json:"peerId"`
	PeerIDHash  string `json:"peerIdHash"`
}

type pingMessage struct {
	Type string `json:"type"`
}

type peersMessage struct {
	Type     string     `json:"type"`
	Peers    []PeerInfo `json:"peers"`
	RoomType string     `json:"roomType"`
	RoomID   string     `json:"roomId"`
}

type peerJoinedMessage struct {
	Type     string   `json:"type"`
	Peer     PeerInfo `json:"peer"`
	RoomType string   `json:"roomType"`
	RoomID   string   `json:"roomId"`
}

type peerLeftMessage struct {
	Type       string `json:"type"`
	PeerID     string `json:"peerId"`
	RoomType   string `json:"roomType"`
	RoomID     string `json:"roomId"`
	Disconnect bool   `json:"disconnect"`
}

type pairDeviceInitiatedMessage struct {
	Type       string `json:"type"`
	RoomSecret string `json:"roomSecret"`
	PairKey    string `json:"pairKey"`
}

type pairDeviceJoinedMessage struct {
	Type       string `json:"type"`
	RoomSecret string `json:"roomSecret"`
	PeerID     string `json:"peerId"`
}

type pairDeviceCanceledMessage struct {
	Type    string `json:"type"`
	PairKey string `json:"pairKey"`
}

type secretRoomDeletedMessage struct {
	Type       string `json:"type"`
	RoomSecret string `json:"roomSecret"`
}

type roomSecretRegeneratedMessage struct {
	Type          string `json:"type"`
	OldRoomSecret string `json:"oldRoomSecret"`
	NewRoomSecret string `json:"newRoomSecret"`
}

type publicRoomCreatedMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type publicRoomIDInvalidMessage struct {
	Type         string `json:"type"`
	PublicRoomID string `json:"publicRoomId"`
}

type typeOnlyMessage struct {
	Type string `json:"type"`
}
