// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"io"
	"os"

	"github.com/jcodagnone/gpxmaps/spatial"
	"github.com/tkrajina/gpxgo/gpx"
)

// Track is a named path found in a GPX document.
type Track struct {
	Name string
	Path spatial.Polygon
}

// ParseGPX reads a GPX document and returns one track per <trk> (all its
// segments joined) followed by one per <rte>. Entries without points are skipped.
func ParseGPX(r io.Reader) ([]Track, error) {
	data, err := gpx.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing gpx data: %w", err)
	}

	return tracksOf(data), nil
}

// ReadGPXFile parses the GPX document stored at filename.
func ReadGPXFile(filename string) ([]Track, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return ParseGPX(f)
}

func tracksOf(data *gpx.GPX) []Track {
	out := make([]Track, 0, len(data.Tracks)+len(data.Routes))

	for _, trk := range data.Tracks {
		var path spatial.Polygon

		for _, seg := range trk.Segments {
			path = appendPoints(path, seg.Points)
		}

		if len(path) > 0 {
			out = append(out, Track{Name: trk.Name, Path: path})
		}
	}

	for _, rte := range data.Routes {
		if path := appendPoints(nil, rte.Points); len(path) > 0 {
			out = append(out, Track{Name: rte.Name, Path: path})
		}
	}

	return out
}

func appendPoints(path spatial.Polygon, points []gpx.GPXPoint) spatial.Polygon {
	for _, p := range points {
		path = append(path, spatial.Point{Lat: p.Latitude, Lng: p.Longitude})
	}

	return path
}
