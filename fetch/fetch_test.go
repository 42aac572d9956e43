// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name string `json:"name"`
}

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) listen(s State, _ Result[payload]) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states = append(r.states, s)
}

func (r *recorder) seen() []State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]State(nil), r.states...)
}

func newRequest(t *testing.T, url string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)

	return req
}

func TestInitialState(t *testing.T) {
	f := New[payload](nil)

	state, result := f.Snapshot()
	assert.Equal(t, Idle, state)
	assert.Nil(t, result.Response)
	assert.NoError(t, result.Err)
}

func TestDispatchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"ok"}`)
	}))
	defer srv.Close()

	f := New[payload](srv.Client())
	rec := &recorder{}
	f.Subscribe(rec.listen)

	f.Dispatch(newRequest(t, srv.URL), WithValidateStatus(StatusIs(http.StatusOK)))

	assert.Equal(t, []State{Loading, Idle}, rec.seen())
	assert.Equal(t, Idle, f.State())

	result := f.Result()
	require.NotNil(t, result.Response)
	assert.Equal(t, "ok", result.Response.Name)
	assert.NoError(t, result.Err)
}

func TestDispatchStatusRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"boom"}`)
	}))
	defer srv.Close()

	f := New[payload](srv.Client())
	rec := &recorder{}
	f.Subscribe(rec.listen)

	f.Dispatch(newRequest(t, srv.URL), WithValidateStatus(StatusIs(http.StatusOK)))

	assert.Equal(t, []State{Loading, Error}, rec.seen())

	result := f.Result()
	assert.Nil(t, result.Response)

	var reqErr *RequestError
	require.ErrorAs(t, result.Err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode())
	assert.Equal(t, `{"error":"boom"}`, reqErr.Body)
	assert.EqualError(t, reqErr, "Status error. Status 500, Internal Server Error")
}

func TestDispatchWithoutValidationDecodesAnyStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		fmt.Fprint(w, `{"name":"teapot"}`)
	}))
	defer srv.Close()

	f := New[payload](srv.Client())
	f.Dispatch(newRequest(t, srv.URL))

	assert.Equal(t, Idle, f.State())
	assert.Equal(t, "teapot", f.Result().Response.Name)
}

func TestDispatchDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer srv.Close()

	f := New[payload](srv.Client())
	f.Dispatch(newRequest(t, srv.URL))

	state, result := f.Snapshot()
	assert.Equal(t, Error, state)
	assert.Nil(t, result.Response)
	assert.Error(t, result.Err)
}

func TestDispatchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := New[payload](nil)
	f.Dispatch(newRequest(t, url))

	state, result := f.Snapshot()
	assert.Equal(t, Error, state)
	assert.Nil(t, result.Response)

	var reqErr *RequestError
	assert.False(t, errors.As(result.Err, &reqErr))
}

func TestSupersededDispatchIsDropped(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			close(started)
			<-release
			fmt.Fprint(w, `{"name":"slow"}`)

			return
		}

		fmt.Fprint(w, `{"name":"fast"}`)
	}))
	defer srv.Close()

	f := New[payload](srv.Client())
	rec := &recorder{}
	f.Subscribe(rec.listen)

	slow := newRequest(t, srv.URL+"/slow")
	done := make(chan struct{})

	go func() {
		defer close(done)
		f.Dispatch(slow)
	}()

	<-started
	f.Dispatch(newRequest(t, srv.URL+"/fast"))
	close(release)
	<-done

	assert.Equal(t, []State{Loading, Loading, Idle}, rec.seen())
	assert.Equal(t, "fast", f.Result().Response.Name)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", Idle.String())
	assert.Equal(t, "LOADING", Loading.String())
	assert.Equal(t, "ERROR", Error.String())
}

func TestGoPublishesLoadingBeforeReturning(t *testing.T) {
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		fmt.Fprint(w, `{"name":"later"}`)
	}))
	defer srv.Close()

	f := New[payload](srv.Client())

	done := f.Go(newRequest(t, srv.URL))
	assert.Equal(t, Loading, f.State())

	close(release)
	<-done

	assert.Equal(t, Idle, f.State())
	assert.Equal(t, "later", f.Result().Response.Name)
}
