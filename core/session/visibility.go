package session

import "sync"

// VisibilityHub fans one host-visibility signal out to every session. The
// host view (or an operator, via the local API) reports hidden/visible
// once; sessions attached here pause and resume polling together.
type VisibilityHub struct {
	mu      sync.Mutex
	visible bool
	sinks   []func(bool)
}

// NewVisibilityHub starts in the visible state.
func NewVisibilityHub() *VisibilityHub {
	return &VisibilityHub{visible: true}
}

// Attach registers a sink, typically a session's SetVisible.
func (h *VisibilityHub) Attach(sink func(bool)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks = append(h.sinks, sink)
}

// Set broadcasts a visibility change. Repeated states are not re-sent.
func (h *VisibilityHub) Set(visible bool) {
	h.mu.Lock()
	if h.visible == visible {
		h.mu.Unlock()
		return
	}
	h.visible = visible
	sinks := make([]func(bool), len(h.sinks))
	copy(sinks, h.sinks)
	h.mu.Unlock()
	for _, sink := range sinks {
		sink(visible)
	}
}

// Visible returns the current state.
func (h *VisibilityHub) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}
