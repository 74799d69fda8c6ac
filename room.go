/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"time"
)

// Join order picks the color; the palette wraps once a room outgrows it.
var userColors = []string{
	"#D32F2F", "#388E3C", "#1976D2", "#D81B60", "#8E24AA", "#00796B",
	"#F57C00", "#C2185B", "#512DA8", "#0288D1", "#FFA000", "#689F38",
}

// User is a room participant. Name is the identity key: two sessions that
// join with the same name are the same user, there is no other check.
type User struct {
	ConnectionID string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	DeckCursor   int    `json:"restaurantIndex"`
	Online       bool   `json:"online"`
	OptedOut     bool   `json:"hasOptedOut"`
}

// Room is the state of one voting session. It is not safe for concurrent
// use; the owning Hub serializes every call.
type Room struct {
	key string

	users       []*User
	chatHistory []ChatMessage
	leaderboard map[string]*LeaderboardEntry
	// first-reference order of leaderboard keys, used for tie-breaks
	leaderOrder []string

	sessionStart *time.Time
	candidates   []Candidate

	lastChatID int64
	createdAt  time.Time
	lastActive time.Time
}

func newRoom(key string, now time.Time) *Room {
	return &Room{
		key:         key,
		leaderboard: make(map[string]*LeaderboardEntry),
		createdAt:   now,
		lastActive:  now,
	}
}

func (r *Room) touch(now time.Time) {
	r.lastActive = now
}

func (r *Room) findUser(name string) *User {
	for _, u := range r.users {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Join upserts a user by name. A returning user keeps their cursor and votes
// and is rebound to the new connection.
func (r *Room) Join(name, connectionID string) *User {
	if u := r.findUser(name); u != nil {
		u.Online = true
		u.ConnectionID = connectionID
		return u
	}

	u := &User{
		ConnectionID: connectionID,
		Name:         name,
		Color:        userColors[len(r.users)%len(userColors)],
		Online:       true,
	}
	r.users = append(r.users, u)

	return u
}

// MarkOffline flags the user currently bound to connectionID as offline and
// reports whether one was found. Only the first match is considered.
func (r *Room) MarkOffline(connectionID string) bool {
	for _, u := range r.users {
		if u.ConnectionID == connectionID {
			u.Online = false
			return true
		}
	}
	return false
}

// AdvanceCursor moves the user to their next candidate. Unknown names are ignored.
func (r *Room) AdvanceCursor(name string) bool {
	u := r.findUser(name)
	if u == nil {
		return false
	}
	u.DeckCursor++
	return true
}

// OptOut is one-way; there is no way back in for the rest of the session.
func (r *Room) OptOut(name string) bool {
	u := r.findUser(name)
	if u == nil || u.OptedOut {
		return false
	}
	u.OptedOut = true
	return true
}

// Users returns copies in join order.
func (r *Room) Users() []User {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out
}

func (r *Room) onlineCount() int {
	n := 0
	for _, u := range r.users {
		if u.Online {
			n++
		}
	}
	return n
}

// DeckExhausted reports whether the user has voted on every candidate. With
// no candidate set there is nothing to exhaust yet.
func (r *Room) DeckExhausted(name string) bool {
	u := r.findUser(name)
	if u == nil || r.candidates == nil {
		return false
	}
	return u.DeckCursor >= len(r.candidates)
}

// CurrentCandidate is the candidate the user's cursor points at.
func (r *Room) CurrentCandidate(name string) (Candidate, bool) {
	u := r.findUser(name)
	if u == nil || u.DeckCursor >= len(r.candidates) {
		return Candidate{}, false
	}
	return r.candidates[u.DeckCursor], true
}

// RoomSnapshot is the full state sent to a joiner and served over HTTP.
type RoomSnapshot struct {
	Key          string        `json:"roomKey"`
	Users        []User        `json:"users"`
	ChatHistory  []ChatMessage `json:"chatHistory"`
	Leaderboard  []RankedEntry `json:"leaderboard"`
	SessionStart *time.Time    `json:"sessionStart,omitempty"`
	Deadline     *time.Time    `json:"deadline,omitempty"`
	Candidates   []Candidate   `json:"candidateSet,omitempty"`
	Winner       *RankedEntry  `json:"winner,omitempty"`
}

// Snapshot copies the room state. window is the server-side voting window,
// zero when the deadline is advisory only.
func (r *Room) Snapshot(now time.Time, window time.Duration) RoomSnapshot {
	snap := RoomSnapshot{
		Key:          r.key,
		Users:        r.Users(),
		ChatHistory:  r.History(),
		Leaderboard:  r.RankedLeaderboard(),
		SessionStart: r.SessionStart(),
		Deadline:     r.Deadline(window),
		Candidates:   r.CandidateSet(),
	}

	if w, ok := r.Winner(now, window); ok {
		snap.Winner = &w
	}

	return snap
}
