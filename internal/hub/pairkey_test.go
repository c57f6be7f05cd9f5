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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyAllocateUnique(t *testing.T) {
	d := newPairKeyDirectory()

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		p, _ := newTestPeer(peerIDA, "10.0.0.1")
		key := d.allocate("secret", p)
		require.Len(t, key, 6)
		for _, c := range key {
			assert.True(t, c >= '0' && c <= '9')
		}
		assert.False(t, seen[key])
		seen[key] = true
	}
	assert.Equal(t, 500, d.size())
}

func TestPairKeyBackLink(t *testing.T) {
	d := newPairKeyDirectory()
	p, _ := newTestPeer(peerIDA, "10.0.0.1")

	key := d.allocate("secret", p)
	assert.Equal(t, key, p.pairKey)

	entry := d.lookup(key)
	require.NotNil(t, entry)
	assert.Equal(t, "secret", entry.roomSecret)
	assert.Equal(t, p, entry.creator)

	d.remove(key)
	assert.Nil(t, d.lookup(key))
	assert.Empty(t, p.pairKey)
}

func TestPairKeyReallocateRevokesPrior(t *testing.T) {
	d := newPairKeyDirectory()
	p, _ := newTestPeer(peerIDA, "10.0.0.1")

	first := d.allocate("one", p)
	second := d.allocate("two", p)

	assert.Nil(t, d.lookup(first))
	require.NotNil(t, d.lookup(second))
	assert.Equal(t, second, p.pairKey)
	assert.Equal(t, 1, d.size())
}

func TestPairKeyRemoveUnknownIsNoop(t *testing.T) {
	d := newPairKeyDirectory()
	p, _ := newTestPeer(peerIDA, "10.0.0.1")
	key := d.allocate("secret", p)

	d.remove("999999")

	assert.NotNil(t, d.lookup(key))
	assert.Equal(t, key, p.pairKey)
}

func TestRandomRoomSecretShape(t *testing.T) {
	secret := randomRoomSecret()
	assert.Len(t, secret, 256)
	for _, c := range secret {
		assert.True(t, c < 128, "secret must be ASCII")
	}
	assert.NotEqual(t, secret, randomRoomSecret())
}

func TestRandomPublicRoomIDShape(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := randomPublicRoomID()
		require.Len(t, id, 5)
		for _, c := range id {
			assert.True(t, (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'))
		}
	}
}
