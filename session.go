/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"strings"
	"time"
)

// Candidate is one entry of the shared deck. Only Name matters to the room;
// whatever else the catalog put in the record is carried through untouched.
type Candidate struct {
	ID   string
	Name string

	raw json.RawMessage
}

func (c *Candidate) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	// ids show up both as strings and numbers depending on the source
	var id string
	if len(fields.ID) > 0 && json.Unmarshal(fields.ID, &id) != nil {
		id = strings.TrimSpace(string(fields.ID))
	}

	c.ID = id
	c.Name = fields.Name
	c.raw = append(json.RawMessage(nil), data...)

	return nil
}

func (c Candidate) MarshalJSON() ([]byte, error) {
	if len(c.raw) > 0 {
		return c.raw, nil
	}
	return json.Marshal(struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name"`
	}{c.ID, c.Name})
}

func validateCandidates(set []Candidate) error {
	if len(set) == 0 {
		return errEmptyCandidateSet
	}
	for _, c := range set {
		if strings.TrimSpace(c.Name) == "" {
			return errBadCandidate
		}
	}
	return nil
}

// EnsureStarted stores the session start if none is set yet and reports
// whether this call was the one that set it.
func (r *Room) EnsureStarted(proposed time.Time) bool {
	if r.sessionStart != nil {
		return false
	}
	start := proposed
	r.sessionStart = &start
	return true
}

func (r *Room) SessionStart() *time.Time {
	if r.sessionStart == nil {
		return nil
	}
	start := *r.sessionStart
	return &start
}

// Deadline is sessionStart+window, or nil when either is unset.
func (r *Room) Deadline(window time.Duration) *time.Time {
	if r.sessionStart == nil || window <= 0 {
		return nil
	}
	d := r.sessionStart.Add(window)
	return &d
}

func (r *Room) VotingClosed(now time.Time, window time.Duration) bool {
	d := r.Deadline(window)
	return d != nil && !now.Before(*d)
}

// EnsureCandidateSet stores the deck if none is set yet and reports whether
// this call was the one that set it. Later proposals are ignored.
func (r *Room) EnsureCandidateSet(proposed []Candidate) bool {
	if r.candidates != nil {
		return false
	}
	r.candidates = append(make([]Candidate, 0, len(proposed)), proposed...)
	return true
}

func (r *Room) CandidateSet() []Candidate {
	if r.candidates == nil {
		return nil
	}
	return append([]Candidate{}, r.candidates...)
}
