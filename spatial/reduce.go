// Copyright 2025 The gpxmaps Authors
//
// SPDX-License-Identifier: Apache-2.0
package spatial

import "math"

const (
	// initial number of evenly spaced points considered by ReduceSize.
	maxPickSize = 100

	// heading change, in degrees, below which a point is considered to lie
	// on a straight line and can be dropped.
	straightAngle = 45.0
)

// PickSpaced returns at most maxCount items, keeping the first and last one
// and evenly spaced items in between.
func PickSpaced[T any](items []T, maxCount int) []T {
	if len(items) <= maxCount {
		return items
	}

	if maxCount < 2 {
		return []T{items[0], items[len(items)-1]}
	}

	out := make([]T, 0, maxCount)
	nth := len(items) / maxCount

	for i, v := range items {
		switch {
		case i == 0, i == len(items)-1:
			out = append(out, v)
		case i%nth == 0 && len(out) < maxCount-1:
			out = append(out, v)
		}
	}

	return out
}

// ReduceSize shrinks the polygon to at most maxSize points, preferring the
// points where the path turns. A non positive maxSize disables the reduction.
func ReduceSize(polygon Polygon, maxSize int) Polygon {
	if maxSize <= 0 || len(polygon) <= maxSize {
		return polygon
	}

	if maxSize < 2 {
		return Polygon{polygon[0], polygon[len(polygon)-1]}
	}

	for size := max(maxPickSize, maxSize); size >= 2; size-- {
		out := dropStraightPoints(PickSpaced(polygon, size))
		if len(out) <= maxSize {
			return out
		}
	}

	return Polygon{polygon[0], polygon[len(polygon)-1]}
}

// dropStraightPoints removes the points where the heading barely changes.
func dropStraightPoints(polygon Polygon) Polygon {
	out := make(Polygon, 0, len(polygon))

	for i, p := range polygon {
		if i == 0 || i == len(polygon)-1 {
			out = append(out, p)

			continue
		}

		prev := out[len(out)-1]
		next := polygon[i+1]

		if headingDelta(heading(prev, p), heading(p, next)) >= straightAngle {
			out = append(out, p)
		}
	}

	return out
}

func heading(from, to Point) float64 {
	return math.Atan2(to.Lat-from.Lat, to.Lng-from.Lng) * (180 / math.Pi)
}

// headingDelta returns the absolute difference between two headings in [0, 180].
func headingDelta(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	if d > 180 {
		d = 360 - d
	}

	return d
}
