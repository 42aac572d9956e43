// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maximum number of body bytes kept in a RequestError.
const maxErrorBody = 4096

// RequestError is returned when a response is rejected by the status
// validation. It keeps the offending response for diagnostics; its body has
// already been consumed into Body.
type RequestError struct {
	Message  string
	Response *http.Response
	Body     string
}

func newRequestError(message string, resp *http.Response) *RequestError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return &RequestError{
		Message:  message,
		Response: resp,
		Body:     strings.TrimSpace(string(b)),
	}
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s. Status %d, %s", e.Message, e.StatusCode(), http.StatusText(e.StatusCode()))
}

// StatusCode returns the HTTP status of the rejected response.
func (e *RequestError) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}
