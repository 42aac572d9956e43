// Copyright 2025 The gpxmaps Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetch tracks the lifecycle of a single JSON HTTP request: whether
// it is idle, loading or failed, and what the last outcome was.
package fetch

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
)

// State of a Fetcher.
type State int

const (
	// Idle is the state before any request and after a successful one.
	Idle State = iota
	// Loading means a dispatch is in flight.
	Loading
	// Error means the most recent dispatch failed.
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Loading:
		return "LOADING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is the outcome of the last completed dispatch. At most one of
// Response and Err is set; both are nil before any dispatch completes.
type Result[T any] struct {
	Response *T
	Err      error
}

// Listener observes state transitions.
type Listener[T any] func(State, Result[T])

type options struct {
	validateStatus func(int) bool
}

// Option customizes a single dispatch.
type Option func(*options)

// WithValidateStatus rejects responses whose status fails fn.
func WithValidateStatus(fn func(status int) bool) Option {
	return func(o *options) {
		o.validateStatus = fn
	}
}

// StatusIs accepts only the given status code.
func StatusIs(code int) func(int) bool {
	return func(status int) bool {
		return status == code
	}
}

// Fetcher performs requests and decodes their JSON bodies into T.
//
// Every dispatch gets a sequence number; the outcome of a dispatch is
// discarded when a newer one has started meanwhile, so the state always
// reflects the most recent request. Listeners run synchronously, in
// transition order, and must not call Dispatch.
type Fetcher[T any] struct {
	client *http.Client

	// notifyMu serializes transitions with their notifications.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	result    Result[T]
	seq       uint64
	listeners []Listener[T]
}

// New creates a Fetcher using client, or http.DefaultClient when nil.
func New[T any](client *http.Client) *Fetcher[T] {
	if client == nil {
		client = http.DefaultClient
	}

	return &Fetcher[T]{client: client}
}

// Subscribe registers a listener for every applied transition.
func (f *Fetcher[T]) Subscribe(l Listener[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listeners = append(f.listeners, l)
}

// State returns the current state.
func (f *Fetcher[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

// Result returns the outcome of the last applied dispatch.
func (f *Fetcher[T]) Result() Result[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.result
}

// Snapshot returns state and result atomically.
func (f *Fetcher[T]) Snapshot() (State, Result[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state, f.result
}

// Dispatch performs req and records its outcome. It blocks until the
// request completes; failures end up in the state, never as a return value.
func (f *Fetcher[T]) Dispatch(req *http.Request, opts ...Option) {
	o := newOptions(opts)
	f.run(f.begin(), req, &o)
}

// Go is Dispatch in the background. The Loading transition is published
// before Go returns; the channel is closed once the outcome is recorded.
func (f *Fetcher[T]) Go(req *http.Request, opts ...Option) <-chan struct{} {
	o := newOptions(opts)
	seq := f.begin()
	done := make(chan struct{})

	go func() {
		defer close(done)
		f.run(seq, req, &o)
	}()

	return done
}

func newOptions(opts []Option) options {
	o := options{validateStatus: func(int) bool { return true }}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func (f *Fetcher[T]) run(seq uint64, req *http.Request, o *options) {
	resp, err := f.do(req, o)
	if err != nil {
		log.Printf("fetch: %s %s: %v", req.Method, req.URL, err)
		f.finish(seq, Error, Result[T]{Err: err})

		return
	}

	f.finish(seq, Idle, Result[T]{Response: resp})
}

func (f *Fetcher[T]) do(req *http.Request, o *options) (*T, error) {
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if !o.validateStatus(resp.StatusCode) {
		return nil, newRequestError("Status error", resp)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &out, nil
}

func (f *Fetcher[T]) begin() uint64 {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.state = Loading
	result := f.result
	listeners := f.listeners
	f.mu.Unlock()

	for _, l := range listeners {
		l(Loading, result)
	}

	return seq
}

func (f *Fetcher[T]) finish(seq uint64, state State, result Result[T]) {
	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()

	f.mu.Lock()
	if latest := f.seq; seq != latest {
		f.mu.Unlock()
		log.Printf("fetch: dropping outcome of superseded dispatch #%d (latest #%d)", seq, latest)

		return
	}

	f.state = state
	f.result = result
	listeners := f.listeners
	f.mu.Unlock()

	for _, l := range listeners {
		l(state, result)
	}
}
