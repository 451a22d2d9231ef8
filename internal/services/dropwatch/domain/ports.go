// Package domain defines the types and ports of the dropwatch engine
package domain

import (
	"context"
	"net/http"
	"time"
)

// WorkerPort runs the long-lived engine loops until ctx ends
type WorkerPort interface {
	Run(ctx context.Context) error
}

// ReaderPort serves read-only views of engine state
type ReaderPort interface {
	Handle(ctx context.Context, handle string) (HandleRecord, error)
	Window(ctx context.Context, handle string) (Window, error)
	Windows(ctx context.Context) ([]Window, error)
	Stats(ctx context.Context) Stats
	Location() *time.Location
}

// Client is one outbound HTTP client bound to a single proxy
type Client interface {
	ID() string
	Do(req *http.Request) (*http.Response, error)
}

// Selector picks the client for the next attempt and learns from outcomes
type Selector interface {
	Select() Client
	Record(c Client, o Outcome)
}

// Prober performs one classified bulk lookup
type Prober interface {
	Probe(ctx context.Context, c Client, batch []string) ProbeResult
}

// Notifier delivers human-readable messages; failures are reported, never retried
type Notifier interface {
	Send(ctx context.Context, text string) error
	NotifyWindow(ctx context.Context, w Window) error
}

// DropLog is the append-only durable record of windows
type DropLog interface {
	Append(w Window) error
}

// WindowStore mirrors windows into an external store
type WindowStore interface {
	UpsertWindow(ctx context.Context, w Window) error
}

// HandleRegistry holds one record per normalized handle
type HandleRegistry interface {
	// Update runs fn atomically for key; fn sees the previous record (ok=false when absent)
	// and returns the record to store. No other update of key interleaves with fn
	Update(key string, fn func(prev HandleRecord, ok bool) HandleRecord)
	Get(key string) (HandleRecord, bool)
	Len() int
}

// WindowRegistry keeps the latest window per handle
type WindowRegistry interface {
	Put(w Window)
	Get(handle string) (Window, bool)
	List() []Window
	Len() int
}
