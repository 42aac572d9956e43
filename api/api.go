// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package api exposes the GPX conversion and the static map rendering over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/spatial"
)

// MaxUploadBytes is the largest GPX document accepted.
const MaxUploadBytes = 5 << 20

// room for the other multipart fields and boundaries.
const multipartOverhead = 64 << 10

// PNGRenderer renders a preview of a path.
type PNGRenderer interface {
	PNG(ctx context.Context, polygon spatial.Polygon) ([]byte, error)
}

// Server holds the API handlers.
type Server struct {
	service  *convert.Service
	renderer PNGRenderer
}

// NewServer creates the API handlers.
func NewServer(service *convert.Service, renderer PNGRenderer) *Server {
	return &Server{service: service, renderer: renderer}
}

// Register mounts the endpoints on group.
func (s *Server) Register(group *gin.RouterGroup) {
	group.POST("/convert-gpx", s.convertGPX)
	group.GET("/static-map", s.staticMap)
}

type convertForm struct {
	VehicleType  string                `form:"vehicle_type"  binding:"required,vehicletype"`
	MaxPrecision int                   `form:"max_precision" binding:"required,gte=3,lte=30"`
	GPX          *multipart.FileHeader `form:"gpx"           binding:"required"`
}

func (s *Server) convertGPX(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxUploadBytes+multipartOverhead)

	var form convertForm
	if err := ctx.ShouldBindWith(&form, binding.FormMultipart); err != nil {
		jsonError(ctx, http.StatusBadRequest, bindingError(err))

		return
	}

	if form.GPX.Size > MaxUploadBytes {
		jsonError(ctx, http.StatusBadRequest, fmt.Errorf("gpx file exceeds %d bytes", MaxUploadBytes))

		return
	}

	vehicle, err := convert.ParseVehicleType(form.VehicleType)
	if err != nil {
		jsonError(ctx, http.StatusBadRequest, err)

		return
	}

	file, err := form.GPX.Open()
	if err != nil {
		jsonError(ctx, http.StatusBadRequest, fmt.Errorf("opening gpx: %w", err))

		return
	}
	defer file.Close()

	resp, err := s.service.Convert(file, vehicle, form.MaxPrecision)
	if err != nil {
		jsonError(ctx, http.StatusInternalServerError, err)

		return
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) staticMap(ctx *gin.Context) {
	pl := ctx.Query("polyline")
	if pl == "" {
		jsonError(ctx, http.StatusBadRequest, errors.New("polyline must be provided"))

		return
	}

	polygon, err := convert.DecodePolyline(pl)
	if err != nil {
		jsonError(ctx, http.StatusBadRequest, err)

		return
	}

	if len(polygon) == 0 {
		jsonError(ctx, http.StatusBadRequest, errors.New("polyline has no points"))

		return
	}

	png, err := s.renderer.PNG(ctx.Request.Context(), polygon)
	if err != nil {
		jsonError(ctx, http.StatusInternalServerError, fmt.Errorf("generating static map: %w", err))

		return
	}

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Data(http.StatusOK, "image/png", png)
}

// NotFound answers unknown API paths.
func NotFound(ctx *gin.Context) {
	jsonError(ctx, http.StatusNotFound, errors.New("not found"))
}

func jsonError(ctx *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Printf("api: %s %s: unhandled error: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	} else {
		log.Printf("api: %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}

	ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindingError turns validation failures into messages naming the form field.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("invalid form: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must be provided", fe.Field())
	case "vehicletype":
		return fmt.Errorf("invalid vehicle type %v", fe.Value())
	case "gte", "lte":
		return fmt.Errorf("%s must be between %d and %d", fe.Field(), convert.MinPrecision, convert.MaxPrecision)
	default:
		return fmt.Errorf("invalid %s", fe.Field())
	}
}
