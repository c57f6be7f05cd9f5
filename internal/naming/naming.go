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

// Package naming derives the human-facing identity of a peer. The display
// name is a deterministic function of the peer id, so a device keeps its
// name across reconnections as long as the identity cookie survives.
package naming

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Name is the identity pair shown to other peers in a room.
type Name struct {
	DisplayName string `json:"displayName"`
	DeviceName  string `json:"deviceName"`
}

var adjectives = []string{
	"Amber", "Azure", "Bold", "Brave", "Bright", "Bronze", "Calm", "Clever",
	"Coral", "Cosmic", "Crimson", "Curious", "Daring", "Eager", "Emerald",
	"Fierce", "Gentle", "Golden", "Happy", "Indigo", "Ivory", "Jade",
	"Jolly", "Keen", "Lively", "Lucky", "Mellow", "Mighty", "Noble",
	"Olive", "Proud", "Quick", "Ruby", "Scarlet", "Silent", "Silver",
	"Sunny", "Swift", "Teal", "Violet", "Wild", "Wise",
}

var animals = []string{
	"Badger", "Bear", "Beaver", "Bison", "Cheetah", "Condor", "Crane",
	"Dolphin", "Eagle", "Falcon", "Ferret", "Fox", "Gazelle", "Gecko",
	"Heron", "Ibex", "Jaguar", "Koala", "Lemur", "Leopard", "Lynx",
	"Marmot", "Marten", "Moose", "Narwhal", "Ocelot", "Orca", "Otter",
	"Owl", "Panda", "Panther", "Puffin", "Rabbit", "Raccoon", "Raven",
	"Salmon", "Seal", "Swan", "Tiger", "Walrus", "Weasel", "Wolf",
}

// DisplayName maps a peer id onto a stable adjective-animal pair.
func DisplayName(peerID string) string {
	sum := sha3.Sum256([]byte(peerID))
	a := binary.BigEndian.Uint32(sum[0:4]) % uint32(len(adjectives))
	b := binary.BigEndian.Uint32(sum[4:8]) % uint32(len(animals))
	return fmt.Sprintf("%s %s", adjectives[a], animals[b])
}

// DeviceName classifies a User-Agent string into an "OS Browser" label.
// Unknown agents collapse to a generic device name rather than leaking the
// raw header to other peers.
func DeviceName(userAgent string) string {
	os := osFamily(userAgent)
	browser := browserFamily(userAgent)

	switch {
	case os != "" && browser != "":
		return os + " " + browser
	case os != "":
		return os + " Device"
	case browser != "":
		return browser
	default:
		return "Unknown Device"
	}
}

// Derive builds the full name pair for a peer.
func Derive(peerID, userAgent string) Name {
	return Name{
		DisplayName: DisplayName(peerID),
		DeviceName:  DeviceName(userAgent),
	}
}

func osFamily(ua string) string {
	switch {
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iPhone"), strings.Contains(ua, "iPad"):
		return "iOS"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac OS X"), strings.Contains(ua, "Macintosh"):
		return "Mac"
	case strings.Contains(ua, "CrOS"):
		return "ChromeOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return ""
	}
}

func browserFamily(ua string) string {
	// Order matters: Edge and Opera embed "Chrome", Chrome embeds "Safari".
	switch {
	case strings.Contains(ua, "Edg/"), strings.Contains(ua, "Edge/"):
		return "Edge"
	case strings.Contains(ua, "OPR/"), strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Firefox/"):
		return "Firefox"
	case strings.Contains(ua, "Chrome/"), strings.Contains(ua, "CriOS/"):
		return "Chrome"
	case strings.Contains(ua, "Safari/"):
		return "Safari"
	case strings.Contains(ua, "curl/"):
		return "curl"
	default:
		return ""
	}
}
