package completion

import (
	"context"
	"sync"
)

// Kind labels an independent lane of outbound completion requests.
type Kind string

const (
	KindTranslate Kind = "translate"
	KindChat      Kind = "chat"
)

// Dispatcher keeps at most one request in flight per kind. Acquiring a lane
// cancels the previous request on the same lane; different lanes never
// interfere with each other.
type Dispatcher struct {
	mu       sync.Mutex
	gen      uint64
	inflight map[Kind]flight
}

type flight struct {
	cancel context.CancelFunc
	gen    uint64
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{inflight: make(map[Kind]flight)}
}

// Acquire derives a cancellable context for a new request on the lane,
// cancelling whatever was running there before. The returned release func
// must be called when the request finishes.
func (d *Dispatcher) Acquire(parent context.Context, kind Kind) (context.Context, context.CancelFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.inflight[kind]; ok {
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	d.gen++
	gen := d.gen
	d.inflight[kind] = flight{cancel: cancel, gen: gen}

	release := func() {
		d.mu.Lock()
		if f, ok := d.inflight[kind]; ok && f.gen == gen {
			delete(d.inflight, kind)
		}
		d.mu.Unlock()
		cancel()
	}
	return ctx, release
}
