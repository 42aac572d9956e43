// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package staticmap renders and caches PNG previews of a path.
package staticmap

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	sm "github.com/flopp/go-staticmaps"
	"github.com/fogleman/gg"
	"github.com/golang/geo/s2"
	"github.com/jcodagnone/gpxmaps/spatial"
	"golang.org/x/image/font/basicfont"
)

const (
	width  = 1920
	height = 1080

	markerSize = 20.0
)

// RenderOnMap draws the path over OpenStreetMap tiles, with a numbered
// marker on every waypoint.
func RenderOnMap(polygon spatial.Polygon) (image.Image, error) {
	if len(polygon) == 0 {
		return nil, fmt.Errorf("rendering image: empty path")
	}

	cont := sm.NewContext()
	cont.SetSize(width, height)

	positions := make([]s2.LatLng, 0, len(polygon))
	for _, p := range polygon {
		positions = append(positions, s2.LatLngFromDegrees(p.Lat, p.Lng))
	}

	cont.AddObject(sm.NewPath(positions, color.Black, 1))

	for i, p := range positions {
		cont.AddObject(sm.NewImageMarker(p, numberTextBox(i), 0.5, 0.5))
	}

	img, err := cont.Render()
	if err != nil {
		return nil, fmt.Errorf("rendering image: %w", err)
	}

	return img, nil
}

func numberTextBox(num int) image.Image {
	dc := gg.NewContext(int(markerSize), int(markerSize))
	dc.SetColor(color.Black)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(color.White)
	dc.DrawStringAnchored(strconv.Itoa(num), markerSize/2, markerSize/2, 0.5, 0.5)

	return dc.Image()
}
