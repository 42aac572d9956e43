// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package staticmap

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/spatial"
)

// LocalPreview points to the server's own /static-map endpoint.
type LocalPreview struct {
	// BaseURL of the API, incl protocol, e.g. http://localhost:9876/api
	BaseURL string
}

// PreviewURL implements convert.Previewer.
func (p LocalPreview) PreviewURL(polygon spatial.Polygon) string {
	return fmt.Sprintf(
		"%s/static-map?polyline=%s",
		strings.TrimSuffix(p.BaseURL, "/"),
		url.QueryEscape(convert.EncodePolyline(polygon)),
	)
}

// GooglePreview uses the Google Static Maps API, drawing the path from its
// encoded polyline.
type GooglePreview struct {
	APIKey string
	Size   string
}

// PreviewURL implements convert.Previewer.
func (p GooglePreview) PreviewURL(polygon spatial.Polygon) string {
	size := p.Size
	if size == "" {
		size = "640x360"
	}

	params := url.Values{}
	params.Set("size", size)
	params.Set("path", "color:0x000000ff|weight:3|enc:"+convert.EncodePolyline(polygon))
	params.Set("key", p.APIKey)

	return "https://maps.googleapis.com/maps/api/staticmap?" + params.Encode()
}
