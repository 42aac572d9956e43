// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

//go:embed templates/*.html
var templatesFS embed.FS

// same limit the API applies to the document, plus room for the other fields.
const (
	maxFileBytes    = 5 << 20
	maxRequestBytes = maxFileBytes + 64<<10
)

// Templates parses the page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templatesFS, "templates/*.html")
}

// Handler serves the converter page.
type Handler struct {
	sessions *Sessions
}

// NewHandler creates the page handlers.
func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

// Register installs the templates and the page routes on r.
func (h *Handler) Register(r *gin.Engine) error {
	tmpl, err := Templates()
	if err != nil {
		return fmt.Errorf("parsing templates: %w", err)
	}

	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.index)
	r.POST("/change", h.change)
	r.POST("/submit", h.submit)
	r.POST("/modal/close", h.closeModal)

	return nil
}

func (h *Handler) index(ctx *gin.Context) {
	c := h.sessions.Get(ctx)

	ctx.Header("Cache-Control", "no-store")
	ctx.HTML(http.StatusOK, "index.html", c.View())
}

// changeForm holds the fields posted by the page; absent fields are left as they are.
type changeForm struct {
	VehicleType  *string               `form:"vehicle_type"`
	MaxPrecision *string               `form:"max_precision"`
	GPXFile      *multipart.FileHeader `form:"gpx_file"`
}

// apply copies the posted fields into the container.
func apply(ctx *gin.Context, c *Container) error {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxRequestBytes)

	var form changeForm
	if err := ctx.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		return fmt.Errorf("reading form: %w", err)
	}

	var errs []error

	if form.VehicleType != nil {
		errs = append(errs, c.Change(FieldVehicleType, *form.VehicleType))
	}

	if form.MaxPrecision != nil {
		errs = append(errs, c.Change(FieldMaxPrecision, *form.MaxPrecision))
	}

	// browsers post an empty part when no file was picked
	if form.GPXFile != nil && form.GPXFile.Filename != "" {
		file, err := readUpload(form.GPXFile)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.Attach(file)
		}
	}

	return errors.Join(errs...)
}

func readUpload(fh *multipart.FileHeader) (*FileHandle, error) {
	if fh.Size > maxFileBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", fh.Filename, maxFileBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	return &FileHandle{Name: fh.Filename, Data: data}, nil
}

func (h *Handler) change(ctx *gin.Context) {
	c := h.sessions.Get(ctx)

	if err := apply(ctx, c); err != nil {
		log.Printf("ui: change: %v", err)
		c.Reject(err)
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) submit(ctx *gin.Context) {
	c := h.sessions.Get(ctx)

	// nothing is dispatched unless every posted field was applied
	if err := apply(ctx, c); err != nil {
		log.Printf("ui: submit: %v", err)
		c.Reject(err)
		ctx.Redirect(http.StatusSeeOther, "/")

		return
	}

	// the request outlives this handler
	reqCtx := WithClientIP(context.WithoutCancel(ctx.Request.Context()), ctx.ClientIP())
	if _, err := c.Submit(reqCtx); err != nil {
		log.Printf("ui: submit: %v", err)
	}

	ctx.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) closeModal(ctx *gin.Context) {
	h.sessions.Get(ctx).CloseModal()
	ctx.Redirect(http.StatusSeeOther, "/")
}
