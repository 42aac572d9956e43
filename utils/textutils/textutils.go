// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides string helpers.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// LowerASCIIFolding removes accents, lowercases and trims s.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

// Slug turns s into a lowercase ASCII token safe for file names:
// "Subida al Cerro Pan de Azúcar" becomes "subida-al-cerro-pan-de-azucar".
func Slug(s string) string {
	return strings.Trim(nonSlugRegex.ReplaceAllString(LowerASCIIFolding(s), "-"), "-")
}
