// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/gpxmaps/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
