// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jcodagnone/gpxmaps/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="gpxmaps-test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Morning ride</name>
    <trkseg>
      <trkpt lat="-34.90" lon="-56.16"></trkpt>
      <trkpt lat="-34.91" lon="-56.17"></trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="-34.92" lon="-56.18"></trkpt>
    </trkseg>
  </trk>
  <trk>
    <name>Empty</name>
    <trkseg></trkseg>
  </trk>
  <rte>
    <name>Back home</name>
    <rtept lat="-34.92" lon="-56.18"></rtept>
    <rtept lat="-34.90" lon="-56.16"></rtept>
  </rte>
</gpx>
`

func TestParseGPX(t *testing.T) {
	tracks, err := ParseGPX(strings.NewReader(sampleGPX))
	require.NoError(t, err)

	want := []Track{
		{
			Name: "Morning ride",
			Path: spatial.Polygon{
				{Lat: -34.90, Lng: -56.16},
				{Lat: -34.91, Lng: -56.17},
				{Lat: -34.92, Lng: -56.18},
			},
		},
		{
			Name: "Back home",
			Path: spatial.Polygon{
				{Lat: -34.92, Lng: -56.18},
				{Lat: -34.90, Lng: -56.16},
			},
		},
	}

	if diff := cmp.Diff(want, tracks, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ParseGPX() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGPXInvalid(t *testing.T) {
	_, err := ParseGPX(strings.NewReader("this is not xml"))
	assert.Error(t, err)
}

func TestGoogleMapsURL(t *testing.T) {
	polygon := spatial.Polygon{{Lat: 1, Lng: 2}, {Lat: 3.5, Lng: 4.25}}

	tests := []struct {
		vehicle VehicleType
		mode    int
	}{
		{vehicle: Car, mode: 0},
		{vehicle: Bike, mode: 1},
		{vehicle: Walking, mode: 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.vehicle), func(t *testing.T) {
			want := fmt.Sprintf(
				"https://www.google.com/maps/dir/1.000000,2.000000/3.500000,4.250000/data=!3m1!4b1!4m2!4m1!3e%d",
				tt.mode,
			)
			assert.Equal(t, want, GoogleMapsURL(polygon, tt.vehicle))
		})
	}
}

func TestPolyline(t *testing.T) {
	polygon := spatial.Polygon{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	encoded := EncodePolyline(polygon)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := DecodePolyline(encoded)
	require.NoError(t, err)

	if diff := cmp.Diff(polygon, decoded, cmpopts.EquateApprox(0, 1e-5)); diff != "" {
		t.Errorf("DecodePolyline() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodePolylineInvalid(t *testing.T) {
	_, err := DecodePolyline("_p~iF~ps|U_")
	assert.Error(t, err)
}

func TestVehicleCatalog(t *testing.T) {
	types := VehicleTypes()
	require.Len(t, types, 3)
	assert.Equal(t, Bike, DefaultVehicleType())
	assert.Equal(t, []VehicleType{Bike, Car, Walking}, []VehicleType{types[0].Value, types[1].Value, types[2].Value})

	// callers get a copy
	types[0].Name = "Unicycle"
	assert.Equal(t, "Bike", VehicleTypes()[0].Name)

	v, err := ParseVehicleType("walking")
	require.NoError(t, err)
	assert.Equal(t, Walking, v)

	_, err = ParseVehicleType("rocket")
	assert.Error(t, err)
}

type stubPreviewer struct{}

func (stubPreviewer) PreviewURL(polygon spatial.Polygon) string {
	return "https://img/" + EncodePolyline(polygon)
}

func TestServiceConvert(t *testing.T) {
	s := NewService(stubPreviewer{})

	resp, err := s.Convert(strings.NewReader(sampleGPX), Car, 25)
	require.NoError(t, err)

	require.Len(t, resp.GoogleMapsURLs, 2)
	require.Len(t, resp.MapsURLs, 2)
	assert.True(t, strings.HasSuffix(resp.GoogleMapsURLs[0], "!3e0"))
	assert.True(t, strings.HasPrefix(resp.MapsURLs[1], "https://img/"))
}

func TestServiceNoTracks(t *testing.T) {
	s := NewService(stubPreviewer{})

	_, err := s.Convert(strings.NewReader(`<gpx version="1.1" xmlns="http://www.topografix.com/GPX/1/1"></gpx>`), Car, 25)
	assert.ErrorIs(t, err, ErrNoTracks)
}
