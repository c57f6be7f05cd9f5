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

// pairKeyEntry is one live rendezvous: the secret the two devices will
// share, and the peer that minted it. The directory owns the record; the
// creator holds only the key string, which keeps the link acyclic.
type pairKeyEntry struct {
	roomSecret string
	creator    *Peer
}

// pairKeyDirectory maps active 6-digit pair keys to their rendezvous.
// All access happens under the hub mutex.
type pairKeyDirectory struct {
	entries map[string]*pairKeyEntry
}

func newPairKeyDirectory() *pairKeyDirectory {
	return &pairKeyDirectory{entries: map[string]*pairKeyEntry{}}
}

// allocate mints a collision-free key for creator and records the back-link
// on the peer. A previously held key is revoked first so the at-most-one
// invariant holds.
func (d *pairKeyDirectory) allocate(roomSecret string, creator *Peer) string {
	if creator.pairKey != "" {
		d.remove(creator.pairKey)
	}

	key := randomPairKey()
	for _, exists := d.entries[key]; exists; _, exists = d.entries[key] {
		key = randomPairKey()
	}

	d.entries[key] = &pairKeyEntry{roomSecret: roomSecret, creator: creator}
	creator.pairKey = key
	return key
}

// lookup returns the entry for key, or nil.
func (d *pairKeyDirectory) lookup(key string) *pairKeyEntry {
	return d.entries[key]
}

// remove deletes the entry and clears the creator's back-link.
func (d *pairKeyDirectory) remove(key string) {
	entry, ok := d.entries[key]
	if !ok {
		return
	}
	delete(d.entries, key)
	if entry.creator.pairKey == key {
		entry.creator.pairKey = ""
	}
}

// size returns the number of live keys.
func (d *pairKeyDirectory) size() int {
	return len(d.entries)
}
