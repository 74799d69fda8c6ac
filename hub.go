/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"time"
)

type clientEvent struct {
	client *Client
	msg    ClientMessage
}

// Hub owns one Room and the connections subscribed to it. Every mutation runs
// on the hub's run goroutine, so check-then-set sequences against the room
// never interleave. mu additionally lets HTTP readers and the reaper look at
// the room from other goroutines.
type Hub struct {
	key     string
	cfg     *Config
	room    *Room
	clients map[*Client]bool

	events chan clientEvent
	unreg  chan *Client
	quit   chan struct{}
	once   sync.Once

	now func() time.Time

	mu sync.RWMutex
}

func newHub(cfg *Config, key string) *Hub {
	return &Hub{
		key:     key,
		cfg:     cfg,
		room:    newRoom(key, time.Now()),
		clients: make(map[*Client]bool),
		events:  make(chan clientEvent),
		unreg:   make(chan *Client),
		quit:    make(chan struct{}),
		now:     time.Now,
	}
}

func (h *Hub) run() {
	for {
		select {
		case ev := <-h.events:
			h.handle(ev)

		case c := <-h.unreg:
			h.handleLeave(c)

		case <-h.quit:
			h.closeAll()
			return
		}
	}
}

// submit hands an event to the run loop. It reports false once the hub has
// been stopped.
func (h *Hub) submit(c *Client, msg ClientMessage) bool {
	select {
	case h.events <- clientEvent{client: c, msg: msg}:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.quit:
	}
}

func (h *Hub) stop() {
	h.once.Do(func() {
		close(h.quit)
	})
}

func (h *Hub) handle(ev clientEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	h.room.touch(now)

	switch ev.msg.Type {
	case eventJoin:
		h.handleJoinLocked(ev.client, ev.msg)
	case eventChatSend:
		h.handleChatLocked(ev.msg, now)
	case eventVote:
		h.handleVoteLocked(ev.msg, now)
	case eventOptOut:
		if h.room.OptOut(ev.msg.UserName) {
			h.broadcastLocked(UserListMessage{Type: eventUserListUpdate, Users: h.room.Users()}, nil)
		}
	case eventSetSessionStart:
		h.handleSessionStartLocked(ev.client, ev.msg)
	case eventSetCandidateSet:
		h.handleCandidateSetLocked(ev.client, ev.msg)
	}
}

func (h *Hub) handleJoinLocked(c *Client, msg ClientMessage) {
	if c.userName != "" && c.userName != msg.UserName {
		c.reject(msg.Type, errAlreadyJoined)
		return
	}

	existing := h.room.findUser(msg.UserName) != nil
	h.room.Join(msg.UserName, c.id)

	h.clients[c] = true
	c.userName = msg.UserName

	if existing {
		logf(h.cfg, "ROOMS: %q rejoined %s", msg.UserName, h.key)
	} else {
		logf(h.cfg, "ROOMS: %q joined %s", msg.UserName, h.key)
	}

	if !c.enqueue(RoomStateMessage{
		Type:         eventRoomState,
		RoomSnapshot: h.room.Snapshot(h.now(), h.cfg.voteWindow),
	}) {
		delete(h.clients, c)
	}

	h.broadcastLocked(UserListMessage{Type: eventUserListUpdate, Users: h.room.Users()}, c)
}

func (h *Hub) handleChatLocked(msg ClientMessage, now time.Time) {
	if h.room.findUser(msg.UserName) == nil {
		return
	}

	chat := h.room.AppendChat(msg.UserName, msg.Text, ChatKindChat, now)

	h.broadcastLocked(ChatMessageEvent{Type: eventNewChatMessage, Message: chat}, nil)
}

func (h *Hub) handleVoteLocked(msg ClientMessage, now time.Time) {
	choice, err := parseChoice(msg.Choice)
	if err != nil {
		return
	}

	res := h.room.CastVote(msg.UserName, msg.CandidateName, choice, now, h.cfg.voteWindow)
	if !res.Accepted {
		return
	}

	if res.Announcement != nil {
		h.broadcastLocked(ChatMessageEvent{Type: eventNewChatMessage, Message: *res.Announcement}, nil)
	}

	if res.LeaderboardChanged {
		h.broadcastLocked(LeaderboardMessage{Type: eventLeaderboardUpdate, Leaderboard: h.room.RankedLeaderboard()}, nil)
	}

	if h.room.DeckExhausted(msg.UserName) {
		logf(h.cfg, "ROOMS: %q went through the whole deck in %s", msg.UserName, h.key)
	}

	h.broadcastLocked(UserListMessage{Type: eventUserListUpdate, Users: h.room.Users()}, nil)
}

// Losing a first-writer race is not an error: the loser is told what won.
func (h *Hub) handleSessionStartLocked(c *Client, msg ClientMessage) {
	ts, err := msg.sessionStart()
	if err != nil {
		return
	}

	set := h.room.EnsureStarted(ts)

	update := SessionStartMessage{
		Type:         eventSessionStartUpdate,
		SessionStart: *h.room.SessionStart(),
		Deadline:     h.room.Deadline(h.cfg.voteWindow),
	}

	if set {
		logf(h.cfg, "ROOMS: Session for %s started at %s", h.key, ts.Format(time.RFC3339))
		h.broadcastLocked(update, nil)
		return
	}

	c.enqueue(update)
}

func (h *Hub) handleCandidateSetLocked(c *Client, msg ClientMessage) {
	if h.room.EnsureCandidateSet(msg.Candidates) {
		logf(h.cfg, "ROOMS: %d candidates dealt for %s", len(msg.Candidates), h.key)
		h.broadcastLocked(CandidateSetMessage{Type: eventCandidateSetUpdate, Candidates: h.room.CandidateSet()}, nil)
		return
	}

	c.enqueue(CandidateSetMessage{Type: eventCandidateSetUpdate, Candidates: h.room.CandidateSet()})
}

func (h *Hub) handleLeave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// c may already be gone from clients if it was dropped as too slow, but
	// its user still has to go offline.
	delete(h.clients, c)

	h.room.touch(h.now())

	if h.room.MarkOffline(c.id) {
		logf(h.cfg, "ROOMS: %q left %s", c.userName, h.key)
		h.broadcastLocked(UserListMessage{Type: eventUserListUpdate, Users: h.room.Users()}, c)
	}
}

// broadcastLocked delivers msg to every subscribed client except skip.
// Clients that cannot keep up are dropped.
func (h *Hub) broadcastLocked(msg any, skip *Client) {
	for c := range h.clients {
		if c == skip {
			continue
		}
		if !c.enqueue(msg) {
			delete(h.clients, c)
		}
	}
}

func (h *Hub) snapshot() RoomSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.room.Snapshot(h.now(), h.cfg.voteWindow)
}

// idle reports whether nobody is online and nothing happened since cutoff.
func (h *Hub) idle(cutoff time.Time) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.room.onlineCount() == 0 && h.room.lastActive.Before(cutoff)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}
