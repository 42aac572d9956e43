// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
	cobra.OnInitialize(loadDotEnv)
}

var rootCmd = &cobra.Command{
	Use:   "gpxmaps",
	Short: "GPX tracks to Google Maps directions",
	Long: `
gpxmaps turns the tracks and routes of a GPX file into Google Maps
directions links, reducing every path to the handful of waypoints a
directions link can carry, and renders map previews of the result.
`,
	SilenceUsage: true,
}

var Version = "dev"

func userAgent() string {
	return fmt.Sprintf("gpxmaps/%s (+https://github.com/jcodagnone/gpxmaps)", Version)
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
