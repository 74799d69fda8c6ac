/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireMessage struct {
	Type         string          `json:"type"`
	Users        []User          `json:"users"`
	ChatHistory  []ChatMessage   `json:"chatHistory"`
	Leaderboard  []RankedEntry   `json:"leaderboard"`
	Message      ChatMessage     `json:"message"`
	Candidates   json.RawMessage `json:"candidates"`
	CandidateSet json.RawMessage `json:"candidateSet"`
	Event        string          `json:"event"`
	Reason       string          `json:"reason"`
}

func newTestServer(t *testing.T, cfg *Config) string {
	t.Helper()

	cat, err := parseCatalog(defaultCatalog)
	require.NoError(t, err)

	reg := newTestRegistry(t, cfg)
	srv := httptest.NewServer(newRouter(cfg, reg, cat, make(chan error, 64)))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(msg))
}

func expect(t *testing.T, conn *websocket.Conn, wantType string) wireMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, wantType, msg.Type, "reason: %s", msg.Reason)

	return msg
}

func joinMsg(room, name string) map[string]any {
	return map[string]any{"type": "join", "roomKey": room, "userName": name}
}

func TestWebsocket_JoinScenario(t *testing.T) {
	url := newTestServer(t, testConfig())

	alice := dial(t, url)
	send(t, alice, joinMsg("abcd", "Alice"))

	state := expect(t, alice, eventRoomState)
	require.Len(t, state.Users, 1)
	assert.Equal(t, "Alice", state.Users[0].Name)
	assert.Equal(t, userColors[0], state.Users[0].Color)
	assert.Empty(t, state.ChatHistory)
	assert.Empty(t, state.Leaderboard)

	bob := dial(t, url)
	send(t, bob, joinMsg("ABCD", "Bob"))

	state = expect(t, bob, eventRoomState)
	require.Len(t, state.Users, 2)

	update := expect(t, alice, eventUserListUpdate)
	require.Len(t, update.Users, 2)
	assert.Equal(t, "Bob", update.Users[1].Name)
	assert.Equal(t, userColors[1], update.Users[1].Color)
}

func TestWebsocket_VoteDisconnectAndRejoin(t *testing.T) {
	url := newTestServer(t, testConfig())

	alice := dial(t, url)
	send(t, alice, joinMsg("ABCD", "Alice"))
	expect(t, alice, eventRoomState)

	send(t, alice, map[string]any{"type": "vote", "roomKey": "ABCD", "userName": "Alice", "candidateName": "Pizza Hut", "choice": "yes"})

	chat := expect(t, alice, eventNewChatMessage)
	assert.Equal(t, "Alice a voté pour Pizza Hut", chat.Message.String())
	board := expect(t, alice, eventLeaderboardUpdate)
	require.Len(t, board.Leaderboard, 1)
	assert.Equal(t, []string{"Alice"}, board.Leaderboard[0].Voters)
	users := expect(t, alice, eventUserListUpdate)
	assert.Equal(t, 1, users.Users[0].DeckCursor)

	send(t, alice, map[string]any{"type": "vote", "roomKey": "ABCD", "userName": "Alice", "candidateName": "Compose", "choice": "no"})
	expect(t, alice, eventLeaderboardUpdate)
	users = expect(t, alice, eventUserListUpdate)
	assert.Equal(t, 2, users.Users[0].DeckCursor)

	require.NoError(t, alice.Close())

	again := dial(t, url)
	send(t, again, joinMsg("ABCD", "Alice"))

	state := expect(t, again, eventRoomState)
	require.Len(t, state.Users, 1)
	assert.True(t, state.Users[0].Online)
	assert.Equal(t, 2, state.Users[0].DeckCursor)
	require.Len(t, state.ChatHistory, 1)
	require.NotEmpty(t, state.Leaderboard)
	assert.Equal(t, "Pizza Hut", state.Leaderboard[0].Candidate)
	assert.Equal(t, 1, state.Leaderboard[0].VoteCount)
}

func TestWebsocket_DisconnectBroadcastsOffline(t *testing.T) {
	url := newTestServer(t, testConfig())

	alice := dial(t, url)
	send(t, alice, joinMsg("ABCD", "Alice"))
	expect(t, alice, eventRoomState)

	bob := dial(t, url)
	send(t, bob, joinMsg("ABCD", "Bob"))
	expect(t, bob, eventRoomState)
	expect(t, alice, eventUserListUpdate)

	require.NoError(t, bob.Close())

	update := expect(t, alice, eventUserListUpdate)
	require.Len(t, update.Users, 2)
	assert.True(t, update.Users[0].Online)
	assert.False(t, update.Users[1].Online)
}

func TestWebsocket_CandidateSetSharedWithRoom(t *testing.T) {
	url := newTestServer(t, testConfig())

	alice := dial(t, url)
	send(t, alice, joinMsg("ABCD", "Alice"))
	expect(t, alice, eventRoomState)

	bob := dial(t, url)
	send(t, bob, joinMsg("ABCD", "Bob"))
	expect(t, bob, eventRoomState)
	expect(t, alice, eventUserListUpdate)

	deck := []map[string]any{{"id": "1", "name": "Pizza Hut", "rating": 3.9}, {"id": "2", "name": "Compose"}}
	send(t, alice, map[string]any{"type": "set-candidate-set", "roomKey": "ABCD", "candidates": deck})

	want, err := json.Marshal(deck)
	require.NoError(t, err)

	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := expect(t, conn, eventCandidateSetUpdate)
		assert.JSONEq(t, string(want), string(msg.Candidates))
	}

	carol := dial(t, url)
	send(t, carol, joinMsg("ABCD", "Carol"))
	state := expect(t, carol, eventRoomState)
	assert.JSONEq(t, string(want), string(state.CandidateSet))
}

func TestWebsocket_RejectsBadEvents(t *testing.T) {
	url := newTestServer(t, testConfig())

	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	rej := expect(t, conn, eventRejected)
	assert.Equal(t, errMalformed.Error(), rej.Reason)

	send(t, conn, map[string]any{"type": "vote", "roomKey": "ABCD", "userName": "Alice", "candidateName": "Compose", "choice": "yes"})
	rej = expect(t, conn, eventRejected)
	assert.Equal(t, eventVote, rej.Event)
	assert.Equal(t, errNotJoined.Error(), rej.Reason)

	send(t, conn, map[string]any{"type": "join", "roomKey": "ABCD"})
	rej = expect(t, conn, eventRejected)
	assert.Equal(t, errMissingUserName.Error(), rej.Reason)

	send(t, conn, joinMsg("ABCD", "Alice"))
	expect(t, conn, eventRoomState)

	send(t, conn, joinMsg("WXYZ", "Alice"))
	rej = expect(t, conn, eventRejected)
	assert.Equal(t, errAlreadyJoined.Error(), rej.Reason)

	send(t, conn, map[string]any{"type": "chat-send", "roomKey": "WXYZ", "userName": "Alice", "text": "hi"})
	rej = expect(t, conn, eventRejected)
	assert.Equal(t, errWrongRoom.Error(), rej.Reason)

	// the connection survives all of the above
	send(t, conn, map[string]any{"type": "chat-send", "roomKey": "abcd", "userName": "Alice", "text": "still here"})
	msg := expect(t, conn, eventNewChatMessage)
	assert.Equal(t, "still here", msg.Message.Text)
}

func TestWebsocket_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.eventRate = 0.001
	cfg.eventBurst = 1
	url := newTestServer(t, cfg)

	conn := dial(t, url)
	send(t, conn, joinMsg("ABCD", "Alice"))
	expect(t, conn, eventRoomState)

	send(t, conn, map[string]any{"type": "chat-send", "roomKey": "ABCD", "userName": "Alice", "text": "spam"})
	rej := expect(t, conn, eventRejected)
	assert.Equal(t, errRateLimited.Error(), rej.Reason)
}
