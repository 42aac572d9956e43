// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fogleman/gg"
	"github.com/jcodagnone/gpxmaps/convert"
	"github.com/jcodagnone/gpxmaps/staticmap"
	"github.com/jcodagnone/gpxmaps/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type convertOptions struct {
	vehicleType  string
	maxPrecision int
	outputDir    string
	workers      int
}

var convertOpts = &convertOptions{}

var convertCmd = &cobra.Command{
	Use:   "convert <file.gpx>...",
	Short: "Prints the Google Maps directions links of GPX files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		vehicle, err := convert.ParseVehicleType(convertOpts.vehicleType)
		if err != nil {
			return err
		}

		if convertOpts.maxPrecision < convert.MinPrecision || convertOpts.maxPrecision > convert.MaxPrecision {
			return fmt.Errorf("max-precision must be between %d and %d", convert.MinPrecision, convert.MaxPrecision)
		}

		service := convert.NewService(nil)

		var all []convert.Route

		for _, filename := range args {
			routes, err := routesOf(service, filename, vehicle)
			if err != nil {
				return err
			}

			for _, r := range routes {
				fmt.Printf("# %s: %.1f km, %d waypoints\n%s\n", r.Name, r.Path.Length()/1000, len(r.Path), r.GoogleMapsURL)
			}

			all = append(all, routes...)
		}

		if convertOpts.outputDir == "" {
			return nil
		}

		return renderPNGs(convertOpts.outputDir, all)
	},
}

func routesOf(service *convert.Service, filename string, vehicle convert.VehicleType) ([]convert.Route, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	routes, err := service.Routes(f, vehicle, convertOpts.maxPrecision)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return routes, nil
}

// pngName builds a unique file name for the i-th route.
func pngName(i int, name string) string {
	slug := textutils.Slug(name)
	if slug == "" {
		slug = "map"
	}

	return fmt.Sprintf("%02d-%s.png", i, slug)
}

func renderPNGs(outputDir string, routes []convert.Route) error {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", outputDir, err)
	}

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(routes),
			progressbar.OptionSetDescription("Rendering maps"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)

	g.SetLimit(max(convertOpts.workers, 1))

	for i, route := range routes {
		g.Go(func() error {
			fp := filepath.Join(outputDir, pngName(i, route.Name))

			err := renderPNG(fp, route)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			} else if bar == nil {
				log.Printf("output to: %s", fp)
			}

			if bar != nil {
				_ = bar.Add(1)
			}

			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}

func renderPNG(fp string, route convert.Route) error {
	img, err := staticmap.RenderOnMap(route.Path)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", route.Name, err)
	}

	if err := gg.SavePNG(fp, img); err != nil {
		return fmt.Errorf("saving png for %s: %w", fp, err)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringVar(&convertOpts.vehicleType, "vehicle-type", string(convert.DefaultVehicleType()), "travel mode: bike, car or walking")
	flags.IntVar(&convertOpts.maxPrecision, "max-precision", convert.DefaultPrecision, "maximum number of waypoints per link")
	flags.StringVar(&convertOpts.outputDir, "output-dir", "", "folder to render the map previews in")
	flags.IntVar(&convertOpts.workers, "workers", runtime.NumCPU(), "maps rendered concurrently")
}
