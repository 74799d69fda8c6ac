/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 11, 30, 0, 0, time.UTC)

func TestRoom_JoinAssignsPaletteColorsInJoinOrder(t *testing.T) {
	r := newRoom("ABCD", testNow)

	alice := r.Join("Alice", "c1")
	bob := r.Join("Bob", "c2")

	assert.Equal(t, userColors[0], alice.Color)
	assert.Equal(t, userColors[1], bob.Color)

	users := r.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].Name)
	assert.Equal(t, "Bob", users[1].Name)
	assert.True(t, users[0].Online)
	assert.False(t, users[0].OptedOut)
	assert.Zero(t, users[0].DeckCursor)
}

func TestRoom_JoinWrapsPalette(t *testing.T) {
	r := newRoom("ABCD", testNow)

	for i := 0; i < len(userColors); i++ {
		r.Join(string(rune('A'+i)), "")
	}
	extra := r.Join("Zed", "z")

	assert.Equal(t, userColors[0], extra.Color)
}

func TestRoom_JoinSameNameKeepsOneUser(t *testing.T) {
	r := newRoom("ABCD", testNow)

	r.Join("Alice", "c1")
	r.MarkOffline("c1")
	r.Join("Alice", "c2")
	r.Join("Alice", "c3")

	users := r.Users()
	require.Len(t, users, 1)
	assert.True(t, users[0].Online)
	assert.Equal(t, "c3", users[0].ConnectionID)
}

func TestRoom_RejoinKeepsCursorAndVotes(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")

	res := r.CastVote("Alice", "Pizza Hut", ChoiceYes, testNow, 0)
	require.True(t, res.Accepted)

	require.True(t, r.MarkOffline("c1"))
	assert.False(t, r.Users()[0].Online)

	u := r.Join("Alice", "c2")
	assert.True(t, u.Online)
	assert.Equal(t, 1, u.DeckCursor)
	assert.Equal(t, userColors[0], u.Color)

	entry, ok := r.Entry("Pizza Hut")
	require.True(t, ok)
	assert.Equal(t, []string{"Alice"}, entry.Voters)
}

func TestRoom_MarkOfflineOnlyAffectsBoundUser(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")
	r.Join("Bob", "c2")
	r.Join("Carol", "c3")

	assert.True(t, r.MarkOffline("c2"))

	users := r.Users()
	assert.True(t, users[0].Online)
	assert.False(t, users[1].Online)
	assert.True(t, users[2].Online)
	assert.Equal(t, 2, r.onlineCount())
}

func TestRoom_MarkOfflineUnknownConnection(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")

	assert.False(t, r.MarkOffline("nope"))
	assert.True(t, r.Users()[0].Online)
}

func TestRoom_MarkOfflineAfterRebindIgnoresOldConnection(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "old")
	r.Join("Alice", "new")

	assert.False(t, r.MarkOffline("old"))
	assert.True(t, r.Users()[0].Online)
}

func TestRoom_OptOutIsOneWay(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")

	assert.True(t, r.OptOut("Alice"))
	assert.False(t, r.OptOut("Alice"))
	assert.True(t, r.Users()[0].OptedOut)

	// rejoining does not opt back in
	r.Join("Alice", "c2")
	assert.True(t, r.Users()[0].OptedOut)
}

func TestRoom_UnknownUserOperationsAreNoops(t *testing.T) {
	r := newRoom("ABCD", testNow)

	assert.False(t, r.OptOut("ghost"))
	assert.False(t, r.AdvanceCursor("ghost"))
	assert.False(t, r.DeckExhausted("ghost"))
	assert.Empty(t, r.Users())
}

func TestRoom_DeckCursor(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")

	_, ok := r.CurrentCandidate("Alice")
	assert.False(t, ok, "no deck yet")
	assert.False(t, r.DeckExhausted("Alice"))

	r.EnsureCandidateSet([]Candidate{{Name: "Pizza Hut"}, {Name: "Compose"}})

	c, ok := r.CurrentCandidate("Alice")
	require.True(t, ok)
	assert.Equal(t, "Pizza Hut", c.Name)

	require.True(t, r.AdvanceCursor("Alice"))
	c, _ = r.CurrentCandidate("Alice")
	assert.Equal(t, "Compose", c.Name)

	r.AdvanceCursor("Alice")
	assert.True(t, r.DeckExhausted("Alice"))
	_, ok = r.CurrentCandidate("Alice")
	assert.False(t, ok)
}

func TestRoom_UsersReturnsCopies(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")

	users := r.Users()
	users[0].Name = "Mallory"

	assert.Equal(t, "Alice", r.Users()[0].Name)
}

func TestRoom_SnapshotOfFreshRoom(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.Join("Alice", "c1")

	snap := r.Snapshot(testNow, 0)

	assert.Equal(t, "ABCD", snap.Key)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, userColors[0], snap.Users[0].Color)
	assert.Empty(t, snap.ChatHistory)
	assert.Empty(t, snap.Leaderboard)
	assert.Nil(t, snap.SessionStart)
	assert.Nil(t, snap.Deadline)
	assert.Nil(t, snap.Candidates)
	assert.Nil(t, snap.Winner)
}
