package statuspanel

import (
	"context"
	"sync"
)

// State is the panel lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Fetcher retrieves the two backend payloads for one refresh cycle.
type Fetcher interface {
	Fetch(ctx context.Context) (HealthStatus, ServiceConfig, error)
}

// Controller consumes refresh requests on a single goroutine. Requests
// arriving while a refresh is in flight coalesce into one pending
// re-run, so the displayed state always comes from the last cycle to
// complete; there is no cancellation of an in-flight fetch.
type Controller struct {
	fetch   Fetcher
	apply   func(UIState)
	refresh chan struct{}

	mu      sync.Mutex
	state   State
	current UIState
}

// NewController wires a fetcher to an apply callback. apply runs on the
// controller goroutine after every completed cycle; it may be nil.
func NewController(fetch Fetcher, apply func(UIState)) *Controller {
	if apply == nil {
		apply = func(UIState) {}
	}
	return &Controller{
		fetch:   fetch,
		apply:   apply,
		refresh: make(chan struct{}, 1),
		state:   StateIdle,
	}
}

// Refresh requests a new cycle. It never blocks; a request during an
// active cycle queues at most one follow-up run.
func (c *Controller) Refresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

// Run processes refresh requests until ctx is done. An initial refresh
// fires immediately, matching a panel that loads on page open.
func (c *Controller) Run(ctx context.Context) {
	c.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.refresh:
			c.runOnce(ctx)
		}
	}
}

func (c *Controller) runOnce(ctx context.Context) {
	c.setState(StateLoading, UIState{})
	health, cfg, err := c.fetch.Fetch(ctx)
	if err != nil {
		ui := RenderError(err)
		c.setState(StateErrored, ui)
		c.apply(ui)
		return
	}
	ui := Render(health, cfg)
	c.setState(StateRendered, ui)
	c.apply(ui)
}

func (c *Controller) setState(s State, ui UIState) {
	c.mu.Lock()
	c.state = s
	if s == StateRendered || s == StateErrored {
		c.current = ui
	}
	c.mu.Unlock()
}

// State reports the current lifecycle phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the last completed render.
func (c *Controller) Current() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
