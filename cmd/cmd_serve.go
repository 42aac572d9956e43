// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/gpxmaps/api"
	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/server"
	"github.com/jcodagnone/gpxmaps/staticmap"
	"github.com/jcodagnone/gpxmaps/ui"
	"github.com/jcodagnone/gpxmaps/utils/httputils"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const defaultAddr = ":9876"

type serveOptions struct {
	cacheSize  int
	cacheTTL   time.Duration
	burst      int
	sessionTTL time.Duration
	proxies    []string
	mapSize    string
	httpTrace  bool
	debug      bool
}

var serveOpts = &serveOptions{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the converter page and its API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := stringFlag(cmd, "addr", envAddr)
		baseURL := stringFlag(cmd, "base-url", envBaseURL)
		if baseURL == "" {
			baseURL = "http://" + localHost(addr) + "/api"
		}

		apiURL := stringFlag(cmd, "api-url", envAPIURL)
		if apiURL == "" {
			apiURL = "http://" + localHost(addr) + "/api/convert-gpx"
		}

		if !serveOpts.debug {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		previewer, err := newPreviewer(ctx, stringFlag(cmd, "preview", envPreview), baseURL)
		if err != nil {
			return err
		}

		cache, closeCache, err := newCache(ctx, stringFlag(cmd, "redis-addr", envRedisAddr))
		if err != nil {
			return err
		}
		defer closeCache()

		limiter, err := api.NewIPRateLimiter(rate.Limit(floatFlag(cmd, "rate", envRate)), serveOpts.burst)
		if err != nil {
			return fmt.Errorf("creating rate limiter: %w", err)
		}

		var trace io.Writer
		if serveOpts.httpTrace {
			trace = os.Stderr
		}

		client := httputils.NewClient(httputils.ClientOptions{UserAgent: userAgent(), TraceWriter: trace})
		sessions := ui.NewSessions(serveOpts.sessionTTL, func() *ui.Container {
			return ui.NewContainer(client, apiURL)
		})

		engine, err := server.NewEngine(server.Config{
			Service:  convert.NewService(previewer),
			Renderer: staticmap.NewRenderer(cache),
			Sessions: sessions,
			Limiter:  limiter,

			TrustedProxies: serveOpts.proxies,
		})
		if err != nil {
			return err
		}

		log.Printf("📍 Previews: %T, API at %s", previewer, baseURL)

		return server.Run(ctx, addr, engine)
	},
}

// localHost is the address the page uses to reach its own API.
func localHost(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}

	return addr
}

func newPreviewer(ctx context.Context, kind, baseURL string) (convert.Previewer, error) {
	switch kind {
	case "", "local":
		return staticmap.LocalPreview{BaseURL: baseURL}, nil
	case "google":
		key, err := staticmap.ResolveGoogleAPIKey(ctx)
		if err != nil {
			return nil, fmt.Errorf("google previews need an API key: %w", err)
		}

		return staticmap.GooglePreview{APIKey: key, Size: serveOpts.mapSize}, nil
	default:
		return nil, fmt.Errorf("unknown preview provider %q, expected local or google", kind)
	}
}

func newCache(ctx context.Context, redisAddr string) (staticmap.Cache, func(), error) {
	if redisAddr == "" {
		cache, err := staticmap.NewMemoryCache(serveOpts.cacheSize)
		if err != nil {
			return nil, nil, fmt.Errorf("creating cache: %w", err)
		}

		return cache, func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()

		return nil, nil, fmt.Errorf("connecting to redis at %s: %w", redisAddr, err)
	}

	log.Printf("✅ Caching static maps in redis at %s", redisAddr)

	return staticmap.NewRedisCache(client, serveOpts.cacheTTL), func() {
		if err := client.Close(); err != nil {
			log.Printf("closing redis client: %v", err)
		}
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", defaultAddr, "HTTP address ("+envAddr+")")
	flags.String("base-url", "", "base URL the API is exposed on, incl protocol, used in preview links ("+envBaseURL+")")
	flags.String("api-url", "", "conversion endpoint the page posts to ("+envAPIURL+")")
	flags.String("preview", "local", "preview provider: local or google ("+envPreview+")")
	flags.String("redis-addr", "", "redis address for the static map cache, in memory when empty ("+envRedisAddr+")")
	flags.Float64("rate", 2, "API requests per second allowed per client ("+envRate+")")
	flags.IntVar(&serveOpts.burst, "burst", 10, "API request burst allowed per client")
	flags.IntVar(&serveOpts.cacheSize, "cache-size", 256, "static maps kept by the in memory cache")
	flags.DurationVar(&serveOpts.cacheTTL, "cache-ttl", 24*time.Hour, "expiration of static maps cached in redis")
	flags.DurationVar(&serveOpts.sessionTTL, "session-ttl", 30*time.Minute, "idle time after which a page session is dropped")
	flags.StringSliceVar(&serveOpts.proxies, "trusted-proxies", nil, "reverse proxies whose X-Forwarded-For names the client, loopback is always trusted")
	flags.StringVar(&serveOpts.mapSize, "map-size", "640x360", "size of google static map previews")
	flags.BoolVar(&serveOpts.httpTrace, "http-trace", false, "dump the requests the page makes to the API")
	flags.BoolVar(&serveOpts.debug, "debug", false, "run gin in debug mode")
}
