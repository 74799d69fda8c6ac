/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendChat_TrimsToMostRecentBatch(t *testing.T) {
	r := newRoom("ABCD", testNow)

	for i := 1; i <= chatHistoryLimit; i++ {
		r.AppendChat("Alice", strconv.Itoa(i), ChatKindChat, testNow)
	}
	require.Len(t, r.History(), chatHistoryLimit, "at the limit nothing is trimmed")

	r.AppendChat("Alice", strconv.Itoa(chatHistoryLimit+1), ChatKindChat, testNow)

	history := r.History()
	require.Len(t, history, chatHistoryKeep)
	for i, msg := range history {
		assert.Equal(t, strconv.Itoa(chatHistoryLimit+1-chatHistoryKeep+1+i), msg.Text)
	}
}

func TestAppendChat_NeverExceedsLimit(t *testing.T) {
	r := newRoom("ABCD", testNow)

	for i := 0; i < 1000; i++ {
		r.AppendChat("Bob", "hi", ChatKindChat, testNow)
		assert.LessOrEqual(t, len(r.History()), chatHistoryLimit)
	}
}

func TestAppendChat_IDsStrictlyIncrease(t *testing.T) {
	r := newRoom("ABCD", testNow)

	a := r.AppendChat("Alice", "one", ChatKindChat, testNow)
	b := r.AppendChat("Bob", "two", ChatKindChat, testNow)
	c := r.AppendChat("Alice", "three", ChatKindChat, testNow.Add(-time.Second))
	d := r.AppendChat("Alice", "four", ChatKindChat, testNow.Add(time.Minute))

	assert.Equal(t, testNow.UnixMilli(), a.ID)
	assert.Greater(t, b.ID, a.ID)
	assert.Greater(t, c.ID, b.ID)
	assert.Equal(t, testNow.Add(time.Minute).UnixMilli(), d.ID)
}

func TestAppendChat_Fields(t *testing.T) {
	r := newRoom("ABCD", testNow)

	msg := r.AppendChat("Alice", "on mange où ?", ChatKindChat, testNow)

	assert.Equal(t, "Alice", msg.Author)
	assert.Equal(t, "on mange où ?", msg.Text)
	assert.Equal(t, ChatKindChat, msg.Kind)
	assert.Equal(t, testNow.In(time.Local).Format(chatTimeFormat), msg.Time)
	assert.Equal(t, []ChatMessage{msg}, r.History())
}

func TestHistory_ReturnsCopy(t *testing.T) {
	r := newRoom("ABCD", testNow)
	r.AppendChat("Alice", "hello", ChatKindChat, testNow)

	h := r.History()
	h[0].Text = "changed"

	assert.Equal(t, "hello", r.History()[0].Text)
}
