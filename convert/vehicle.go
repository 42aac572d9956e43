// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package convert

import (
	"fmt"
)

// VehicleType is the travel mode requested for the directions.
type VehicleType string

// Known vehicle types.
const (
	Bike    VehicleType = "bike"
	Car     VehicleType = "car"
	Walking VehicleType = "walking"
)

// VehicleOption is one entry of the vehicle catalog offered to users.
type VehicleOption struct {
	Value VehicleType
	Name  string
}

// vehicleCatalog is ordered; the first entry is the default selection.
var vehicleCatalog = [...]VehicleOption{
	{Value: Bike, Name: "Bike"},
	{Value: Car, Name: "Car"},
	{Value: Walking, Name: "Walking"},
}

// VehicleTypes returns the catalog in display order.
func VehicleTypes() []VehicleOption {
	out := make([]VehicleOption, len(vehicleCatalog))
	copy(out, vehicleCatalog[:])

	return out
}

// DefaultVehicleType returns the first catalog entry.
func DefaultVehicleType() VehicleType {
	return vehicleCatalog[0].Value
}

// ParseVehicleType validates s against the catalog.
func ParseVehicleType(s string) (VehicleType, error) {
	for _, o := range vehicleCatalog {
		if string(o.Value) == s {
			return o.Value, nil
		}
	}

	return "", fmt.Errorf("invalid vehicle type %q", s)
}

// TravelMode returns the Google Maps `!3e` travel mode code.
func (v VehicleType) TravelMode() int {
	switch v {
	case Car:
		return 0
	case Walking:
		return 2
	default:
		return 1
	}
}
