package analysis

import "sync/atomic"

// Holder publishes the current engine to concurrent readers. Reloading the
// pattern registry builds a new engine and stores it here; requests already
// running keep the engine they loaded.
type Holder struct {
	engine atomic.Pointer[Engine]
}

// NewHolder returns a holder publishing e.
func NewHolder(e *Engine) *Holder {
	h := &Holder{}
	h.engine.Store(e)
	return h
}

// Engine returns the current engine.
func (h *Holder) Engine() *Engine {
	return h.engine.Load()
}

// Swap publishes e and returns the previous engine.
func (h *Holder) Swap(e *Engine) *Engine {
	return h.engine.Swap(e)
}
