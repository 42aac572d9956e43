// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jcodagnone/gpxmaps/fetch"
	"github.com/jcodagnone/gpxmaps/ui"
	"github.com/jcodagnone/gpxmaps/utils/httputils"
	"github.com/spf13/cobra"
)

type submitOptions struct {
	vehicleType  string
	maxPrecision int
	httpTrace    bool
	traceBody    bool
}

var submitOpts = &submitOptions{}

var submitCmd = &cobra.Command{
	Use:   "submit <file.gpx>",
	Short: "Submits a GPX file to a running server and prints the previews",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := stringFlag(cmd, "endpoint", envEndpoint)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}

		var trace io.Writer
		if submitOpts.httpTrace {
			trace = os.Stderr
		}

		client := httputils.NewClient(httputils.ClientOptions{
			UserAgent:   userAgent(),
			TraceWriter: trace,
			TraceBody:   submitOpts.traceBody,
		})

		c := ui.NewContainer(client, endpoint)
		if err := c.Change(ui.FieldVehicleType, submitOpts.vehicleType); err != nil {
			return err
		}

		if err := c.Change(ui.FieldMaxPrecision, strconv.Itoa(submitOpts.maxPrecision)); err != nil {
			return err
		}

		c.Attach(&ui.FileHandle{Name: filepath.Base(args[0]), Data: data})

		done, err := c.Submit(cmd.Context())
		if err != nil {
			return err
		}
		<-done

		result := c.Result()
		if c.State() == fetch.Error {
			return fmt.Errorf("converting %s: %w", args[0], result.Err)
		}

		for _, p := range c.View().Form.Previews {
			fmt.Printf("%s\n  preview: %s\n", p.DirectionsURL, p.ImageURL)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	flags := submitCmd.Flags()
	flags.String("endpoint", "http://localhost"+defaultAddr+"/api/convert-gpx", "conversion endpoint ("+envEndpoint+")")
	flags.StringVar(&submitOpts.vehicleType, "vehicle-type", "bike", "travel mode: bike, car or walking")
	flags.IntVar(&submitOpts.maxPrecision, "max-precision", 25, "maximum number of waypoints per link")
	flags.BoolVar(&submitOpts.httpTrace, "http-trace", false, "dump the HTTP exchange to stderr")
	flags.BoolVar(&submitOpts.traceBody, "http-trace-body", false, "include response bodies in the HTTP trace")
}
