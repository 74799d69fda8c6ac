/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"crypto/rand"
	"strings"
	"sync"
	"time"
)

const roomKeyLength = 6

// Registry holds every room hub in the process, keyed by normalized room key.
// Rooms are created lazily on first join and live until the reaper finds
// them idle.
type Registry struct {
	cfg *Config

	mu   sync.Mutex
	hubs map[string]*Hub
}

func newRegistry(ctx context.Context, cfg *Config) *Registry {
	reg := &Registry{
		cfg:  cfg,
		hubs: make(map[string]*Hub),
	}
	if cfg.roomTimeout > 0 {
		go reg.reaperLoop(ctx)
	}
	return reg
}

// Room keys are compared case-insensitively.
func normalizeRoomKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// GetOrCreate returns the hub for key, starting a fresh empty room if none exists.
func (reg *Registry) GetOrCreate(key string) *Hub {
	key = normalizeRoomKey(key)

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if hub, ok := reg.hubs[key]; ok {
		return hub
	}

	hub := newHub(reg.cfg, key)
	reg.hubs[key] = hub
	go hub.run()

	logf(reg.cfg, "ROOMS: Created room %s", key)

	return hub
}

// Get never creates a room.
func (reg *Registry) Get(key string) (*Hub, bool) {
	key = normalizeRoomKey(key)

	reg.mu.Lock()
	defer reg.mu.Unlock()

	hub, ok := reg.hubs[key]
	return hub, ok
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	return len(reg.hubs)
}

// newRoomKey generates a crypto-random key that is not in use yet.
func (reg *Registry) newRoomKey() string {
	// no 0/O or 1/I, keys get read aloud
	const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const ceiling = byte(255 - (256 % len(letters)))

	for {
		out := make([]byte, 0, roomKeyLength)
		buf := make([]byte, roomKeyLength*2)

		for len(out) < roomKeyLength {
			if _, err := rand.Read(buf); err != nil {
				panic("crypto/rand failure: " + err.Error())
			}
			for _, b := range buf {
				if b <= ceiling && len(out) < roomKeyLength {
					out = append(out, letters[int(b)%len(letters)])
				}
			}
		}

		key := string(out)

		reg.mu.Lock()
		_, exists := reg.hubs[key]
		reg.mu.Unlock()

		if !exists {
			return key
		}
	}
}

// reap drops rooms with nobody online that have been quiet since cutoff and
// returns how many went.
func (reg *Registry) reap(cutoff time.Time) int {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	n := 0
	for key, hub := range reg.hubs {
		if hub.idle(cutoff) {
			delete(reg.hubs, key)
			hub.stop()
			n++

			logf(reg.cfg, "ROOMS: Evicted idle room %s after %s",
				key,
				time.Since(hub.room.createdAt).Round(time.Second),
			)
		}
	}
	return n
}

func (reg *Registry) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(reg.cfg.roomTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.reap(time.Now().Add(-reg.cfg.roomTimeout))
		}
	}
}

// Close stops every room hub, disconnecting their clients.
func (reg *Registry) Close() {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for key, hub := range reg.hubs {
		hub.stop()
		delete(reg.hubs, key)
	}
}
