/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

var (
	errMalformed         = errors.New("malformed message")
	errUnknownEvent      = errors.New("unknown event type")
	errMissingRoomKey    = errors.New("missing room key")
	errMissingUserName   = errors.New("missing user name")
	errMissingText       = errors.New("missing message text")
	errTextTooLong       = errors.New("message text too long")
	errMissingCandidate  = errors.New("missing candidate name")
	errBadChoice         = errors.New("choice must be yes or no")
	errMissingTimestamp  = errors.New("missing or invalid timestamp")
	errEmptyCandidateSet = errors.New("candidate set is empty")
	errBadCandidate      = errors.New("candidate without a name")
	errNotJoined         = errors.New("connection has not joined a room")
	errAlreadyJoined     = errors.New("connection already joined another room")
	errWrongRoom         = errors.New("event targets a room this connection did not join")
	errRateLimited       = errors.New("too many events")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
