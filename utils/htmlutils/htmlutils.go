// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for inspecting HTML pages.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Node2string appends the whitespace normalized text of n to sb.
func Node2string(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		for _, field := range strings.Fields(n.Data) {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(field)
		}

		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		Node2string(child, sb)
	}
}

// Text returns the whitespace normalized text of n.
func Text(n *html.Node) string {
	var sb strings.Builder
	Node2string(n, &sb)

	return sb.String()
}

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTTP response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// Parse reads an HTML response into a document.
func Parse(resp *http.Response) (*html.Node, error) {
	r, err := AsReader(resp)
	if err != nil {
		return nil, err
	}

	return AsNode(r)
}

// Attr returns the value of the attribute key of n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}

	return "", false
}

// HasAttr tells whether n carries the attribute key, whatever its value.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)

	return ok
}

// WithAttr matches elements whose attribute key equals val.
func WithAttr(key, val string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		v, ok := Attr(n, key)

		return ok && v == val
	}
}

// FindAll returns the descendants of n with the given tag accepted by
// match, in document order. A nil match accepts every element.
func FindAll(n *html.Node, tag string, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node

	for d := range n.Descendants() {
		if d.Type == html.ElementNode && strings.EqualFold(d.Data, tag) && (match == nil || match(d)) {
			out = append(out, d)
		}
	}

	return out
}
