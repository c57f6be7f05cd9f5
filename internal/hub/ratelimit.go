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
	"sync"
	"time"
)

// RateLimiter bounds the join-family attempts per peer with a sliding
// window. Stale buckets are swept opportunistically so the map does not
// grow with churn.
type RateLimiter struct {
	mu       sync.Mutex
	attempts int
	window   time.Duration
	events   map[string][]time.Time
	cleanup  time.Time
}

// NewRateLimiter returns a limiter permitting attempts events per window
// for each key.
func NewRateLimiter(attempts int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		attempts: attempts,
		window:   window,
		events:   make(map[string][]time.Time),
	}
}

// Allow records an attempt for key and reports whether it is within the
// window budget. A rejected attempt is not recorded.
func (r *RateLimiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-r.window)

	r.mu.Lock()
	defer r.mu.Unlock()

	times := r.events[key]
	filtered := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) >= r.attempts {
		r.events[key] = filtered
		return false
	}
	filtered = append(filtered, now)
	r.events[key] = filtered

	if now.Sub(r.cleanup) > 5*time.Minute {
		r.cleanup = now
		for k, v := range r.events {
			if len(v) == 0 || v[len(v)-1].Before(cutoff) {
				delete(r.events, k)
			}
		}
	}

	return true
}
