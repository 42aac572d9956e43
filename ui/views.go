// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import "github.com/jcodagnone/gpxmaps/convert"

// ModalTitle is the title of the error dialog.
const ModalTitle = "Something went wrong"

// PageView is rendered by the index template.
type PageView struct {
	// Loading makes the page refresh itself until the request completes.
	Loading bool
	Form    FormView
	Modal   ModalView
}

// Option is an entry of the vehicle type select.
type Option struct {
	Value    string
	Name     string
	Selected bool
}

// Preview pairs a map image with its directions link.
type Preview struct {
	ImageURL      string
	DirectionsURL string
}

// FormView is rendered by the form template.
type FormView struct {
	VehicleTypes  []Option
	MaxPrecision  string
	PrecisionMin  int
	PrecisionMax  int
	FileName      string
	SubmitAllowed bool
	Loading       bool

	// Previews is nil when there is nothing to preview.
	Previews []Preview
}

// NewFormView builds the form from the fields. Preview cards are only built
// when both URL lists are present, one per index both lists share.
func NewFormView(data RequestData, allowed, loading bool, googleMapsURLs, mapURLs []string) FormView {
	catalog := convert.VehicleTypes()
	options := make([]Option, 0, len(catalog))

	for _, v := range catalog {
		options = append(options, Option{
			Value:    string(v.Value),
			Name:     v.Name,
			Selected: string(v.Value) == data.VehicleType,
		})
	}

	view := FormView{
		VehicleTypes:  options,
		MaxPrecision:  data.MaxPrecision,
		PrecisionMin:  convert.MinPrecision,
		PrecisionMax:  convert.MaxPrecision,
		SubmitAllowed: allowed,
		Loading:       loading,
	}

	if data.GPX != nil {
		view.FileName = data.GPX.Name
	}

	if googleMapsURLs != nil && mapURLs != nil {
		n := min(len(googleMapsURLs), len(mapURLs))
		view.Previews = make([]Preview, 0, n)

		for i := range n {
			view.Previews = append(view.Previews, Preview{
				ImageURL:      mapURLs[i],
				DirectionsURL: googleMapsURLs[i],
			})
		}
	}

	return view
}

// ModalView is rendered by the modal template. Body is only rendered while
// the dialog is open.
type ModalView struct {
	Open  bool
	Title string
	Body  any
}

// ErrorDetails is the body of the error dialog.
type ErrorDetails struct {
	Summary string
	Message string
}

// NewErrorModal describes the failure of the last conversion.
func NewErrorModal(open bool, err error) ModalView {
	view := ModalView{Open: open, Title: ModalTitle}
	if !open {
		return view
	}

	message := "unknown error"
	if err != nil {
		message = err.Error()
	}

	view.Body = ErrorDetails{
		Summary: "An error occurred when converting the .gpx file",
		Message: message,
	}

	return view
}
