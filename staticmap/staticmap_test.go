// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package staticmap

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/spatial"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePath = spatial.Polygon{
	{Lat: 38.5, Lng: -120.2},
	{Lat: 40.7, Lng: -120.95},
	{Lat: 43.252, Lng: -126.453},
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	c, err := NewMemoryCache(1)
	require.NoError(t, err)

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", []byte("A")))
	require.NoError(t, c.Set(ctx, "b", []byte("B")))

	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "a should have been evicted")

	got, ok, _ := c.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, []byte("B"), got)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client, time.Hour)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte{0x89, 'P', 'N', 'G'}))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)
	assert.True(t, mr.Exists("gpxmaps:staticmap:k"))
	assert.Equal(t, time.Hour, mr.TTL("gpxmaps:staticmap:k"))
}

func TestRendererUsesCache(t *testing.T) {
	cache, err := NewMemoryCache(8)
	require.NoError(t, err)

	calls := 0
	r := NewRenderer(cache)
	r.render = func(spatial.Polygon) (image.Image, error) {
		calls++

		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	}

	first, err := r.PNG(context.Background(), samplePath)
	require.NoError(t, err)

	second, err := r.PNG(context.Background(), samplePath)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	_, err = png.Decode(bytes.NewReader(first))
	assert.NoError(t, err)
}

func TestRendererError(t *testing.T) {
	r := NewRenderer(nil)
	r.render = func(spatial.Polygon) (image.Image, error) {
		return nil, errors.New("no tiles")
	}

	_, err := r.PNG(context.Background(), samplePath)
	assert.EqualError(t, err, "no tiles")
}

func TestLocalPreview(t *testing.T) {
	got := LocalPreview{BaseURL: "http://localhost:9876/api/"}.PreviewURL(samplePath)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/api/static-map", u.Path)
	assert.Equal(t, convert.EncodePolyline(samplePath), u.Query().Get("polyline"))
}

func TestGooglePreview(t *testing.T) {
	got := GooglePreview{APIKey: "secret"}.PreviewURL(samplePath)

	assert.True(t, strings.HasPrefix(got, "https://maps.googleapis.com/maps/api/staticmap?"))

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "secret", u.Query().Get("key"))
	assert.Equal(t, "640x360", u.Query().Get("size"))
	assert.True(t, strings.HasSuffix(u.Query().Get("path"), "enc:"+convert.EncodePolyline(samplePath)))
}

func TestResolveGoogleAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "from-env")

	key, err := ResolveGoogleAPIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}
