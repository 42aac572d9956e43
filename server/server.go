// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package server composes the API and the page into a single HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/gpxmaps/api"
	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/ui"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// the page reaches the API over loopback, forwarding the browser address.
var loopbackProxies = []string{"127.0.0.1", "::1"}

// Config holds the components served.
type Config struct {
	Service  *convert.Service
	Renderer api.PNGRenderer
	Sessions *ui.Sessions

	// Limiter throttles the API per client; nil disables it.
	Limiter *api.IPRateLimiter

	// TrustedProxies are the addresses, besides loopback, whose
	// X-Forwarded-For header names the client.
	TrustedProxies []string
}

// NewEngine builds the router: /status, the API under /api and the page at /.
func NewEngine(cfg Config) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("registering validators: %w", err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if err := r.SetTrustedProxies(append(slices.Clone(loopbackProxies), cfg.TrustedProxies...)); err != nil {
		return nil, fmt.Errorf("setting trusted proxies: %w", err)
	}

	r.GET("/status", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "OK")
	})

	group := r.Group("/api", api.CORS())
	if cfg.Limiter != nil {
		group.Use(cfg.Limiter.Middleware())
	}

	api.NewServer(cfg.Service, cfg.Renderer).Register(group)

	if err := ui.NewHandler(cfg.Sessions).Register(r); err != nil {
		return nil, err
	}

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			api.NotFound(ctx)

			return
		}

		ctx.String(http.StatusNotFound, "404 page not found")
	})

	return r, nil
}

// Run listens on addr and serves handler until ctx is done.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	return Serve(ctx, ln, handler)
}

// Serve serves handler on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Listening on http://%s", ln.Addr())

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}

		return nil
	})

	return g.Wait()
}
