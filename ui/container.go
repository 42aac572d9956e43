// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package ui is the server rendered GPX converter page. Every browser
// session owns a Container holding the form fields and the state of the
// conversion request.
package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/fetch"
)

// Form field names.
const (
	FieldVehicleType  = "vehicle_type"
	FieldMaxPrecision = "max_precision"
	FieldGPXFile      = "gpx_file"
)

// ErrSubmitNotAllowed is returned by Submit when the form is incomplete
// or a request is in flight.
var ErrSubmitNotAllowed = errors.New("submit not allowed")

// forwardedForHeader carries the browser address on requests made for it.
const forwardedForHeader = "X-Forwarded-For"

type clientIPKey struct{}

// WithClientIP attributes the submissions made with ctx to the browser at ip.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// FileHandle is an attached GPX upload.
type FileHandle struct {
	Name string
	Data []byte
}

// RequestData holds the form fields. It is replaced as a whole on every change.
type RequestData struct {
	VehicleType  string
	MaxPrecision string
	GPX          *FileHandle
}

// DefaultRequestData is the state of a fresh form.
func DefaultRequestData() RequestData {
	return RequestData{
		VehicleType:  string(convert.DefaultVehicleType()),
		MaxPrecision: strconv.Itoa(convert.DefaultPrecision),
	}
}

func submitAllowed(data RequestData, state fetch.State) bool {
	_, err := strconv.Atoi(data.MaxPrecision)

	return data.GPX != nil &&
		err == nil &&
		data.VehicleType != "" &&
		state != fetch.Loading
}

// ClampPrecision parses value and clamps it into the accepted precision range.
func ClampPrecision(value string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}

	n = min(max(n, convert.MinPrecision), convert.MaxPrecision)

	return strconv.Itoa(n), true
}

// Container owns the form state of one session and submits it to the
// conversion endpoint.
type Container struct {
	endpoint string
	fetcher  *fetch.Fetcher[convert.Response]

	// submitMu serializes the eligibility check with the start of a dispatch.
	submitMu sync.Mutex

	mu        sync.Mutex
	data      RequestData
	modalOpen bool

	// rejected is a posted form that could not be read; it is shown instead
	// of the request outcome until the next dispatch.
	rejected error
}

// NewContainer creates a container posting to endpoint.
func NewContainer(client *http.Client, endpoint string) *Container {
	c := &Container{
		endpoint: endpoint,
		fetcher:  fetch.New[convert.Response](client),
		data:     DefaultRequestData(),
	}

	c.fetcher.Subscribe(func(state fetch.State, _ fetch.Result[convert.Response]) {
		if state != fetch.Error {
			return
		}

		c.mu.Lock()
		c.modalOpen = true
		c.mu.Unlock()
	})

	return c
}

// Data returns the current form fields.
func (c *Container) Data() RequestData {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.data
}

// Change stores a field value. The vehicle type is kept verbatim. An integer
// precision is clamped; anything else is stored as posted and keeps the form
// from being submitted.
func (c *Container) Change(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.data

	switch field {
	case FieldVehicleType:
		next.VehicleType = value
	case FieldMaxPrecision:
		if clamped, ok := ClampPrecision(value); ok {
			next.MaxPrecision = clamped
		} else {
			next.MaxPrecision = strings.TrimSpace(value)
		}
	default:
		return fmt.Errorf("unknown field %q", field)
	}

	c.data = next

	return nil
}

// Attach stores the uploaded file; nil releases the current one.
func (c *Container) Attach(file *FileHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.data
	next.GPX = file
	c.data = next
}

// Reject opens the modal with err, a failure reading what the user posted.
func (c *Container) Reject(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rejected = err
	c.modalOpen = true
}

// State is the state of the conversion request.
func (c *Container) State() fetch.State {
	return c.fetcher.State()
}

// Result is the outcome of the last conversion request.
func (c *Container) Result() fetch.Result[convert.Response] {
	return c.fetcher.Result()
}

// SubmitAllowed tells whether the form may be submitted.
func (c *Container) SubmitAllowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return submitAllowed(c.data, c.fetcher.State())
}

// Submit posts the form to the endpoint in the background. The returned
// channel is closed when the outcome has been recorded.
func (c *Container) Submit(ctx context.Context) (<-chan struct{}, error) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	c.mu.Lock()
	data := c.data
	allowed := submitAllowed(data, c.fetcher.State())
	c.mu.Unlock()

	if !allowed {
		return nil, ErrSubmitNotAllowed
	}

	body, contentType, err := encodeRequest(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	if ip, _ := ctx.Value(clientIPKey{}).(string); ip != "" {
		req.Header.Set(forwardedForHeader, ip)
	}

	c.mu.Lock()
	c.rejected = nil
	c.mu.Unlock()

	return c.fetcher.Go(req, fetch.WithValidateStatus(fetch.StatusIs(http.StatusOK))), nil
}

// encodeRequest serializes every field of data as a multipart form.
func encodeRequest(data RequestData) (*bytes.Buffer, string, error) {
	var body bytes.Buffer

	mw := multipart.NewWriter(&body)

	if err := mw.WriteField(FieldVehicleType, data.VehicleType); err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}

	if err := mw.WriteField(FieldMaxPrecision, data.MaxPrecision); err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}

	fw, err := mw.CreateFormFile("gpx", data.GPX.Name)
	if err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}

	if _, err := fw.Write(data.GPX.Data); err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("encoding form: %w", err)
	}

	return &body, mw.FormDataContentType(), nil
}

// CloseModal hides the error dialog. The error itself is kept.
func (c *Container) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modalOpen = false
}

// View is a snapshot of everything the page renders.
func (c *Container) View() PageView {
	c.mu.Lock()
	data := c.data
	modalOpen := c.modalOpen
	rejected := c.rejected
	c.mu.Unlock()

	state, result := c.fetcher.Snapshot()
	loading := state == fetch.Loading

	modalErr := result.Err
	if rejected != nil {
		modalErr = rejected
	}

	var googleMapsURLs, mapURLs []string
	if result.Response != nil {
		googleMapsURLs = result.Response.GoogleMapsURLs
		mapURLs = result.Response.MapsURLs
	}

	return PageView{
		Loading: loading,
		Form:    NewFormView(data, submitAllowed(data, state), loading, googleMapsURLs, mapURLs),
		Modal:   NewErrorModal(modalOpen, modalErr),
	}
}
