/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"sort"
	"strings"
	"time"
)

type Choice int

const (
	ChoiceNo Choice = iota
	ChoiceYes
)

// parseChoice accepts yes/no and the oui/non spelling older clients send.
func parseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "oui":
		return ChoiceYes, nil
	case "no", "non":
		return ChoiceNo, nil
	}
	return ChoiceNo, errBadChoice
}

// LeaderboardEntry holds the affirmative votes for one candidate.
// VoteCount always equals len(Voters).
type LeaderboardEntry struct {
	VoteCount int      `json:"votes"`
	Voters    []string `json:"voters"`
}

func (e *LeaderboardEntry) hasVoter(name string) bool {
	for _, v := range e.Voters {
		if v == name {
			return true
		}
	}
	return false
}

// RankedEntry is a leaderboard row with its candidate name attached.
type RankedEntry struct {
	Candidate string   `json:"name"`
	VoteCount int      `json:"votes"`
	Voters    []string `json:"voters"`
}

// VoteResult tells the caller which slices of room state need re-broadcasting.
type VoteResult struct {
	Accepted           bool
	LeaderboardChanged bool
	Announcement       *ChatMessage
}

// CastVote records one swipe. Votes from unknown or opted-out users, and votes
// after the deadline when window > 0, are dropped without touching state.
// Any accepted vote advances the voter's cursor; only the first YES from a
// voter on a candidate counts and is announced in chat.
func (r *Room) CastVote(voterName, candidateName string, choice Choice, now time.Time, window time.Duration) VoteResult {
	u := r.findUser(voterName)
	if u == nil || u.OptedOut {
		return VoteResult{}
	}
	if r.VotingClosed(now, window) {
		return VoteResult{}
	}

	res := VoteResult{Accepted: true}

	entry, ok := r.leaderboard[candidateName]
	if !ok {
		entry = &LeaderboardEntry{Voters: []string{}}
		r.leaderboard[candidateName] = entry
		r.leaderOrder = append(r.leaderOrder, candidateName)
		res.LeaderboardChanged = true
	}

	if choice == ChoiceYes && !entry.hasVoter(voterName) {
		entry.Voters = append(entry.Voters, voterName)
		entry.VoteCount = len(entry.Voters)
		res.LeaderboardChanged = true

		msg := r.AppendChat(voterName, "a voté pour "+candidateName, ChatKindVote, now)
		res.Announcement = &msg
	}

	r.AdvanceCursor(voterName)
	r.touch(now)

	return res
}

// Entry returns a copy of the leaderboard row for candidateName.
func (r *Room) Entry(candidateName string) (LeaderboardEntry, bool) {
	e, ok := r.leaderboard[candidateName]
	if !ok {
		return LeaderboardEntry{}, false
	}
	return LeaderboardEntry{
		VoteCount: e.VoteCount,
		Voters:    append([]string{}, e.Voters...),
	}, true
}

// RankedLeaderboard sorts by vote count, highest first. Equal counts keep the
// order in which candidates were first voted on.
func (r *Room) RankedLeaderboard() []RankedEntry {
	out := make([]RankedEntry, 0, len(r.leaderOrder))
	for _, name := range r.leaderOrder {
		e := r.leaderboard[name]
		out = append(out, RankedEntry{
			Candidate: name,
			VoteCount: e.VoteCount,
			Voters:    append([]string{}, e.Voters...),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].VoteCount > out[j].VoteCount
	})

	return out
}

// Winner is the top ranked candidate once voting has closed. A candidate
// nobody said yes to never wins.
func (r *Room) Winner(now time.Time, window time.Duration) (RankedEntry, bool) {
	if window <= 0 || !r.VotingClosed(now, window) {
		return RankedEntry{}, false
	}

	ranked := r.RankedLeaderboard()
	if len(ranked) == 0 || ranked[0].VoteCount == 0 {
		return RankedEntry{}, false
	}

	return ranked[0], true
}
