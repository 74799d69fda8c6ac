/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Inbound event types
const (
	eventJoin            = "join"
	eventChatSend        = "chat-send"
	eventVote            = "vote"
	eventOptOut          = "opt-out"
	eventSetSessionStart = "set-session-start"
	eventSetCandidateSet = "set-candidate-set"
)

// Outbound event types
const (
	eventRoomState          = "room-state"
	eventUserListUpdate     = "user-list-update"
	eventNewChatMessage     = "new-chat-message"
	eventLeaderboardUpdate  = "leaderboard-update"
	eventCandidateSetUpdate = "candidate-set-update"
	eventSessionStartUpdate = "session-start-update"
	eventRejected           = "event-rejected"
)

// Messages coming from clients
type ClientMessage struct {
	Type          string      `json:"type"`
	RoomKey       string      `json:"roomKey,omitempty"`
	UserName      string      `json:"userName,omitempty"`
	Text          string      `json:"text,omitempty"`          // chat-send
	CandidateName string      `json:"candidateName,omitempty"` // vote
	Choice        string      `json:"choice,omitempty"`        // vote
	Timestamp     string      `json:"timestamp,omitempty"`     // set-session-start, RFC 3339
	Candidates    []Candidate `json:"candidates,omitempty"`    // set-candidate-set
}

// validate checks the fields the event type requires and normalizes them in
// place. maxChat is the chat length limit in runes.
func (m *ClientMessage) validate(maxChat int) error {
	m.RoomKey = normalizeRoomKey(m.RoomKey)
	m.UserName = strings.TrimSpace(m.UserName)

	switch m.Type {
	case eventJoin, eventChatSend, eventVote, eventOptOut, eventSetSessionStart, eventSetCandidateSet:
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, m.Type)
	}

	if m.RoomKey == "" {
		return errMissingRoomKey
	}

	switch m.Type {
	case eventJoin, eventOptOut:
		if m.UserName == "" {
			return errMissingUserName
		}

	case eventChatSend:
		if m.UserName == "" {
			return errMissingUserName
		}
		m.Text = strings.TrimSpace(m.Text)
		if m.Text == "" {
			return errMissingText
		}
		if maxChat > 0 && utf8.RuneCountInString(m.Text) > maxChat {
			return errTextTooLong
		}

	case eventVote:
		if m.UserName == "" {
			return errMissingUserName
		}
		if strings.TrimSpace(m.CandidateName) == "" {
			return errMissingCandidate
		}
		if _, err := parseChoice(m.Choice); err != nil {
			return err
		}

	case eventSetSessionStart:
		if _, err := m.sessionStart(); err != nil {
			return err
		}

	case eventSetCandidateSet:
		if err := validateCandidates(m.Candidates); err != nil {
			return err
		}
	}

	return nil
}

func (m *ClientMessage) sessionStart() (time.Time, error) {
	if m.Timestamp == "" {
		return time.Time{}, errMissingTimestamp
	}
	ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", errMissingTimestamp, err)
	}
	return ts, nil
}

// Messages sent to clients

// RoomStateMessage is sent only to the connection that just joined.
type RoomStateMessage struct {
	Type string `json:"type"` // "room-state"
	RoomSnapshot
}

type UserListMessage struct {
	Type  string `json:"type"` // "user-list-update"
	Users []User `json:"users"`
}

type ChatMessageEvent struct {
	Type    string      `json:"type"` // "new-chat-message"
	Message ChatMessage `json:"message"`
}

type LeaderboardMessage struct {
	Type        string        `json:"type"` // "leaderboard-update"
	Leaderboard []RankedEntry `json:"leaderboard"`
}

type CandidateSetMessage struct {
	Type       string      `json:"type"` // "candidate-set-update"
	Candidates []Candidate `json:"candidates"`
}

type SessionStartMessage struct {
	Type         string     `json:"type"` // "session-start-update"
	SessionStart time.Time  `json:"sessionStart"`
	Deadline     *time.Time `json:"deadline,omitempty"`
}

// RejectedMessage goes back to the sender of an event that could not be applied.
type RejectedMessage struct {
	Type   string `json:"type"`  // "event-rejected"
	Event  string `json:"event"` // inbound type, if it could be read
	Reason string `json:"reason"`
}
