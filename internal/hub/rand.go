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
	"crypto/rand"
	"math/big"

	"github.com/peerbeam/peerbeam/constant"
)

const (
	secretCharset       = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	publicRoomIDCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// randomString draws n characters from charset with a cryptographic RNG.
// Room secrets are the only authorization proof in the protocol, so they
// must not come from a seeded PRNG.
func randomString(charset string, n int) string {
	max := big.NewInt(int64(len(charset)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// The platform RNG failing is not recoverable.
			panic(err)
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out)
}

// randomRoomSecret mints a fresh 256-character secret-room key.
func randomRoomSecret() string {
	return randomString(secretCharset, constant.RoomSecretLength)
}

// randomPublicRoomID mints a 5-character lowercase alphanumeric room id.
func randomPublicRoomID() string {
	return randomString(publicRoomIDCharset, constant.PublicRoomIDLength)
}

// randomPairKey draws a uniform 6-digit decimal string. The draw is over
// [1000000, 2000000) with the leading digit stripped, which keeps leading
// zeros without biasing the distribution.
func randomPairKey() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		panic(err)
	}
	return n.Add(n, big.NewInt(1_000_000)).String()[1:]
}
