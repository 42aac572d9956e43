// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package staticmap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/png"
	"log"

	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/spatial"
	"golang.org/x/sync/singleflight"
)

// Renderer produces PNG previews, going through the cache first.
type Renderer struct {
	cache  Cache
	render func(spatial.Polygon) (image.Image, error)
	group  singleflight.Group
}

// NewRenderer creates a renderer; cache may be nil.
func NewRenderer(cache Cache) *Renderer {
	return &Renderer{
		cache:  cache,
		render: RenderOnMap,
	}
}

// PNG returns the encoded preview of polygon. Concurrent requests for the
// same path share a single rendering.
func (r *Renderer) PNG(ctx context.Context, polygon spatial.Polygon) ([]byte, error) {
	key := cacheKey(polygon)

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Printf("staticmap: cache read failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		img, err := r.render(polygon)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}

		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, err
	}

	out, _ := v.([]byte)

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, out); err != nil {
			log.Printf("staticmap: cache write failed: %v", err)
		}
	}

	return out, nil
}

func cacheKey(polygon spatial.Polygon) string {
	sum := sha256.Sum256([]byte(convert.EncodePolyline(polygon)))

	return hex.EncodeToString(sum[:])
}
