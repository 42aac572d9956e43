// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// maximum number of clients tracked by the rate limiter.
const maxTrackedClients = 4096

// IPRateLimiter keeps a token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter allows r requests per second per client, with bursts of burst.
func NewIPRateLimiter(r rate.Limit, burst int) (*IPRateLimiter, error) {
	limiters, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		return nil, err
	}

	return &IPRateLimiter{limiters: limiters, rate: r, burst: burst}, nil
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters.Get(ip); ok {
		return limiter
	}

	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters.Add(ip, limiter)

	return limiter
}

// Middleware rejects requests over the limit with 429.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ip := ctx.ClientIP()
		if !l.limiter(ip).Allow() {
			jsonError(ctx, http.StatusTooManyRequests, fmt.Errorf("rate limit exceeded for %s", ip))

			return
		}

		ctx.Next()
	}
}

// CORS allows the API to be called from any origin.
func CORS() gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.MaxAge = 12 * time.Hour

	return cors.New(config)
}
