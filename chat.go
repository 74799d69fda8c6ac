/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"time"
)

const (
	// Once history grows past chatHistoryLimit it is cut back to the most
	// recent chatHistoryKeep entries in one go.
	chatHistoryLimit = 100
	chatHistoryKeep  = 50

	chatTimeFormat = "15:04"
)

type ChatKind string

const (
	ChatKindChat ChatKind = "chat"
	ChatKindVote ChatKind = "vote"
)

// ChatMessage is immutable once appended.
type ChatMessage struct {
	ID     int64    `json:"id"`
	Author string   `json:"user"`
	Text   string   `json:"text"`
	Time   string   `json:"time"`
	Kind   ChatKind `json:"type"`
}

// String renders the message the way the chat panel shows it.
func (m ChatMessage) String() string {
	return m.Author + " " + m.Text
}

// AppendChat adds a message and returns it. IDs come from the send time in
// milliseconds, bumped when two messages land in the same millisecond so they
// stay strictly increasing within a room.
func (r *Room) AppendChat(author, text string, kind ChatKind, now time.Time) ChatMessage {
	id := now.UnixMilli()
	if id <= r.lastChatID {
		id = r.lastChatID + 1
	}
	r.lastChatID = id

	msg := ChatMessage{
		ID:     id,
		Author: author,
		Text:   text,
		Time:   now.In(time.Local).Format(chatTimeFormat),
		Kind:   kind,
	}

	r.chatHistory = append(r.chatHistory, msg)
	if len(r.chatHistory) > chatHistoryLimit {
		kept := make([]ChatMessage, chatHistoryKeep)
		copy(kept, r.chatHistory[len(r.chatHistory)-chatHistoryKeep:])
		r.chatHistory = kept
	}

	r.touch(now)

	return msg
}

// History returns the retained messages in the order they were sent.
func (r *Room) History() []ChatMessage {
	out := make([]ChatMessage, len(r.chatHistory))
	copy(out, r.chatHistory)
	return out
}
