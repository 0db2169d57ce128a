package dashboard

import (
	"github.com/google/uuid"

	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

// User-facing failure messages. Details go to the log, never to the screen.
const (
	SummaryFailedMessage = "Could not fetch summary"
	GraphFailedMessage   = "Failed to load graph data."
)

// Screen is one of the two dashboard screens.
type Screen int

const (
	ScreenSelect Screen = iota
	ScreenGraph
)

func (s Screen) String() string {
	switch s {
	case ScreenSelect:
		return "select"
	case ScreenGraph:
		return "graph"
	default:
		return "unknown"
	}
}

// RequestKind says which fetch a Request started.
type RequestKind int

const (
	SummaryRequest RequestKind = iota
	GraphRequest
)

// Request identifies one in-flight fetch. Its result is only applied while
// it is still the state's active request.
type Request struct {
	ID      string
	Product string
	Kind    RequestKind
}

func newRequest(product string, kind RequestKind) Request {
	return Request{ID: uuid.NewString(), Product: product, Kind: kind}
}

// State is an immutable snapshot of what the dashboard shows. Transitions
// return a new State and never modify the receiver.
type State struct {
	Screen    Screen
	Selected  string
	Summary   *upstream.Summary
	Series    series.MergedSeries
	Loading   bool
	Err       string
	RequestID string
}

// Select picks a product on the selection screen and starts its summary
// fetch. Whatever was shown before is cleared.
func (s State) Select(product string) (State, Request) {
	req := newRequest(product, SummaryRequest)
	return State{
		Screen:    ScreenSelect,
		Selected:  product,
		Loading:   true,
		RequestID: req.ID,
	}, req
}

// OpenGraph moves to the chart screen for product and starts the graph
// fetch.
func (s State) OpenGraph(product string) (State, Request) {
	req := newRequest(product, GraphRequest)
	return State{
		Screen:    ScreenGraph,
		Selected:  product,
		Loading:   true,
		RequestID: req.ID,
	}, req
}

// Back returns to the selection screen keeping only the selection. Any
// pending fetch becomes stale.
func (s State) Back() State {
	return State{Screen: ScreenSelect, Selected: s.Selected}
}

// CanShowTrend reports whether the chart screen can be opened.
func (s State) CanShowTrend() bool {
	return s.Selected != ""
}

// Pending reports whether a fetch is awaited.
func (s State) Pending() bool {
	return s.RequestID != ""
}

// IsCurrent reports whether req is the request this state is waiting on.
func (s State) IsCurrent(req Request) bool {
	if req.ID == "" || req.ID != s.RequestID || req.Product != s.Selected {
		return false
	}
	switch req.Kind {
	case SummaryRequest:
		return s.Screen == ScreenSelect
	case GraphRequest:
		return s.Screen == ScreenGraph
	default:
		return false
	}
}

// ResolveSummary applies the outcome of a summary fetch. Results for any
// request other than the current one are discarded.
func (s State) ResolveSummary(req Request, sum *upstream.Summary, err error) State {
	if req.Kind != SummaryRequest || !s.IsCurrent(req) {
		return s
	}
	next := State{Screen: ScreenSelect, Selected: s.Selected}
	if err != nil || sum == nil {
		next.Err = SummaryFailedMessage
		return next
	}
	next.Summary = sum
	return next
}

// ResolveGraph applies the outcome of a graph fetch. Results for any request
// other than the current one are discarded.
func (s State) ResolveGraph(req Request, ms series.MergedSeries, err error) State {
	if req.Kind != GraphRequest || !s.IsCurrent(req) {
		return s
	}
	next := State{Screen: ScreenGraph, Selected: s.Selected}
	if err != nil {
		next.Err = GraphFailedMessage
		return next
	}
	if ms == nil {
		ms = series.MergedSeries{}
	}
	next.Series = ms
	return next
}
