// Package lifecycle starts and stops the long-running parts of the server
// process in order.
package lifecycle

import "context"

// Component is a unit managed by a Manager.
type Component interface {
	// Start brings the component up. It should return once the component
	// is ready to serve; background work continues after it returns.
	Start(ctx context.Context) error

	// Stop releases the component within the deadline of ctx.
	Stop(ctx context.Context) error

	// Name identifies the component in logs and errors. Must not be empty.
	Name() string
}

// Func adapts a pair of functions to a Component.
type Func struct {
	ComponentName string
	StartFunc     func(ctx context.Context) error
	StopFunc      func(ctx context.Context) error
}

func (f *Func) Name() string { return f.ComponentName }

func (f *Func) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f *Func) Stop(ctx context.Context) error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx)
}
