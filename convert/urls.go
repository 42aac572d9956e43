// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"strings"

	"github.com/jcodagnone/gpxmaps/spatial"
	"github.com/twpayne/go-polyline"
)

const googleMapsDirURL = "https://www.google.com/maps/dir/%s/data=!3m1!4b1!4m2!4m1!3e%d"

// GoogleMapsURL returns a directions link through every point of the polygon.
func GoogleMapsURL(polygon spatial.Polygon, vehicle VehicleType) string {
	waypoints := make([]string, 0, len(polygon))
	for _, p := range polygon {
		waypoints = append(waypoints, p.String())
	}

	return fmt.Sprintf(googleMapsDirURL, strings.Join(waypoints, "/"), vehicle.TravelMode())
}

// EncodePolyline encodes the polygon with the Google encoded polyline algorithm.
func EncodePolyline(polygon spatial.Polygon) string {
	coords := make([][]float64, 0, len(polygon))
	for _, p := range polygon {
		coords = append(coords, []float64{p.Lat, p.Lng})
	}

	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline is the inverse of EncodePolyline.
func DecodePolyline(pl string) (spatial.Polygon, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(pl))
	if err != nil {
		return nil, fmt.Errorf("decoding polyline: %w", err)
	}

	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected remainder bits in polyline: %q", rest)
	}

	out := make(spatial.Polygon, 0, len(coords))
	for _, c := range coords {
		out = append(out, spatial.Point{Lat: c[0], Lng: c[1]})
	}

	return out, nil
}
