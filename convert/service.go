// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package convert turns GPX documents into Google Maps directions links.
package convert

import (
	"errors"
	"fmt"
	"io"

	"github.com/jcodagnone/gpxmaps/spatial"
)

// Bounds of the precision (maximum number of waypoints per link).
const (
	MinPrecision     = 3
	MaxPrecision     = 30
	DefaultPrecision = 25
)

// ErrNoTracks is returned when a GPX document contains no usable path.
var ErrNoTracks = errors.New("no tracks or routes found")

// Response is the payload of the conversion endpoint. Both slices have the
// same length and are index aligned.
type Response struct {
	GoogleMapsURLs []string `json:"google_maps_urls"`
	MapsURLs       []string `json:"maps_urls"`
}

// Previewer produces the URL of a preview image for a path.
type Previewer interface {
	PreviewURL(polygon spatial.Polygon) string
}

// Route is a reduced track together with its directions link.
type Route struct {
	Name          string
	Path          spatial.Polygon
	GoogleMapsURL string
}

// Service converts GPX documents.
type Service struct {
	previewer Previewer
}

// NewService creates a service; previewer may be nil when no preview URLs are needed.
func NewService(previewer Previewer) *Service {
	return &Service{previewer: previewer}
}

// Routes parses the document and reduces every track to at most maxPrecision waypoints.
func (s *Service) Routes(r io.Reader, vehicle VehicleType, maxPrecision int) ([]Route, error) {
	tracks, err := ParseGPX(r)
	if err != nil {
		return nil, err
	}

	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	routes := make([]Route, 0, len(tracks))
	for _, t := range tracks {
		path := spatial.ReduceSize(t.Path, maxPrecision)
		routes = append(routes, Route{
			Name:          t.Name,
			Path:          path,
			GoogleMapsURL: GoogleMapsURL(path, vehicle),
		})
	}

	return routes, nil
}

// Convert returns the directions and preview links for every track of the document.
func (s *Service) Convert(r io.Reader, vehicle VehicleType, maxPrecision int) (*Response, error) {
	if s.previewer == nil {
		return nil, errors.New("convert: no previewer configured")
	}

	routes, err := s.Routes(r, vehicle, maxPrecision)
	if err != nil {
		return nil, fmt.Errorf("converting: %w", err)
	}

	resp := &Response{
		GoogleMapsURLs: make([]string, 0, len(routes)),
		MapsURLs:       make([]string, 0, len(routes)),
	}

	for _, route := range routes {
		resp.GoogleMapsURLs = append(resp.GoogleMapsURLs, route.GoogleMapsURL)
		resp.MapsURLs = append(resp.MapsURLs, s.previewer.PreviewURL(route.Path))
	}

	return resp, nil
}
