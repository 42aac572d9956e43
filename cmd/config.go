// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Environment variables overriding flag defaults.
const (
	envAddr      = "GPXMAPS_ADDR"
	envBaseURL   = "GPXMAPS_BASE_URL"
	envAPIURL    = "GPXMAPS_API_URL"
	envPreview   = "GPXMAPS_PREVIEW"
	envRedisAddr = "GPXMAPS_REDIS_ADDR"
	envRate      = "GPXMAPS_RATE"
	envEndpoint  = "GPXMAPS_ENDPOINT"
)

// loadDotEnv reads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️ Ignoring .env: %v", err)
	}
}

// stringFlag returns the flag value, falling back to env when the flag was
// not given explicitly.
func stringFlag(cmd *cobra.Command, name, env string) string {
	v, _ := cmd.Flags().GetString(name)
	if cmd.Flags().Changed(name) {
		return v
	}

	if e, ok := os.LookupEnv(env); ok && e != "" {
		return e
	}

	return v
}

// floatFlag is stringFlag for float flags.
func floatFlag(cmd *cobra.Command, name, env string) float64 {
	v, _ := cmd.Flags().GetFloat64(name)
	if cmd.Flags().Changed(name) {
		return v
	}

	if e, ok := os.LookupEnv(env); ok && e != "" {
		f, err := strconv.ParseFloat(e, 64)
		if err != nil {
			log.Printf("⚠️ Ignoring %s=%q: %v", env, e, err)

			return v
		}

		return f
	}

	return v
}
