// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "gpxmaps_session"

// maximum number of live sessions; the least recently used is dropped first.
const maxSessions = 1024

// Sessions keeps a Container per browser session. Sessions idle for longer
// than the TTL are dropped along with their container and attached file.
type Sessions struct {
	containers   *expirable.LRU[string, *Container]
	ttl          time.Duration
	newContainer func() *Container
}

// NewSessions creates a session store; newContainer builds the container
// of every new session.
func NewSessions(ttl time.Duration, newContainer func() *Container) *Sessions {
	return &Sessions{
		containers:   expirable.NewLRU[string, *Container](maxSessions, nil, ttl),
		ttl:          ttl,
		newContainer: newContainer,
	}
}

// Get returns the container of the request's session, starting a new
// session when there is none.
func (s *Sessions) Get(ctx *gin.Context) *Container {
	id, err := ctx.Cookie(SessionCookie)
	if err == nil {
		if _, perr := uuid.Parse(id); perr != nil {
			id = ""
		}
	}

	c, ok := s.containers.Get(id)
	if !ok {
		id = uuid.NewString()
		c = s.newContainer()
	}

	// re-adding resets the idle timer
	s.containers.Add(id, c)

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, id, int(s.ttl.Seconds()), "/", "", false, true)

	return c
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	return s.containers.Len()
}
