// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils builds HTTP clients with optional wire tracing.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"regexp"
	"strings"
	"time"
)

const (
	traceMaxLines = 256
	traceMaxChars = 512
)

var authorizationRegex = regexp.MustCompile(`(?i)^(authorization|x-goog-api-key):.*$`)

// ClientOptions configures NewClient.
type ClientOptions struct {
	// UserAgent sent with every request.
	UserAgent string

	// Timeout of a whole request, including reading the body.
	Timeout time.Duration

	// TraceWriter receives a dump of every request and response when set.
	TraceWriter io.Writer

	// TraceBody includes response bodies in the trace.
	TraceBody bool
}

// NewClient returns a client whose transport adds default headers and,
// optionally, traces the HTTP exchanges.
func NewClient(options ClientOptions) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
	}

	userAgent := "gpxmaps/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	timeout := 2 * time.Minute
	if options.Timeout > 0 {
		timeout = options.Timeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &AppendRequestHeadersRoundTripper{
			Headers: map[string]string{
				"User-Agent": userAgent,
				"Accept":     "application/json",
			},
			Transport: &LoggingRoundTripper{
				Writer:    options.TraceWriter,
				DumpBody:  options.TraceBody,
				Transport: transport,
			},
		},
	}
}

// LoggingRoundTripper dumps requests and responses to Writer. Request
// bodies are never dumped since they usually carry uploads.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
}

// prefix every line with the direction marker, redacting credentials and
// trimming long dumps.
func abbreviate(dump []byte, prefix rune) string {
	lines := strings.Split(strings.TrimRight(string(dump), "\r\n"), "\n")

	truncated := len(lines) > traceMaxLines
	if truncated {
		lines = lines[:traceMaxLines]
	}

	var sb strings.Builder

	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if authorizationRegex.MatchString(line) {
			line = line[:strings.IndexByte(line, ':')+1] + " <redacted>"
		}

		if len(line) > traceMaxChars {
			line = line[:traceMaxChars] + "…"
		}

		fmt.Fprintf(&sb, "%c %s\n", prefix, line)
	}

	if truncated {
		fmt.Fprintf(&sb, "%c …\n", prefix)
	}

	return sb.String()
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	dump, err := httputil.DumpRequestOut(req, false)
	if err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	if _, err := io.WriteString(t.Writer, abbreviate(dump, '>')); err != nil {
		return nil, fmt.Errorf("tracing HTTP request: %w", err)
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< FAILED: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	dump, err = httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		resp.Body.Close()

		return nil, fmt.Errorf("tracing HTTP response: %w", err)
	}

	fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n%s", time.Since(start), abbreviate(dump, '<'))

	return resp, nil
}

// AppendRequestHeadersRoundTripper sets Headers on every outgoing request
// that does not define them already.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	for k, v := range t.Headers {
		if out.Header.Get(k) == "" {
			out.Header.Set(k, v)
		}
	}

	return t.Transport.RoundTrip(out)
}
