package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/moolen/upgradelens/internal/logging"
)

// DefaultShutdownTimeout bounds the Stop call of each component.
const DefaultShutdownTimeout = 30 * time.Second

// Manager starts components after their dependencies and stops them in
// reverse start order. Dependencies must be registered before their
// dependents, so registration order is always a valid start order.
type Manager struct {
	mu              sync.Mutex
	components      []Component
	registered      map[Component]bool
	started         []Component
	shutdownTimeout time.Duration
	logger          *logging.Logger
}

// NewManager creates a manager with DefaultShutdownTimeout.
func NewManager() *Manager {
	return &Manager{
		registered:      make(map[Component]bool),
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          logging.GetLogger("lifecycle"),
	}
}

// Register adds component. Every entry of dependsOn must already be
// registered.
func (m *Manager) Register(component Component, dependsOn ...Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if component == nil {
		return fmt.Errorf("cannot register nil component")
	}
	if component.Name() == "" {
		return fmt.Errorf("component must have a non-empty name")
	}
	if m.registered[component] {
		return fmt.Errorf("component %s is already registered", component.Name())
	}
	for _, dep := range dependsOn {
		if !m.registered[dep] {
			return fmt.Errorf("dependency %s of %s is not registered", dep.Name(), component.Name())
		}
	}

	m.components = append(m.components, component)
	m.registered[component] = true
	m.logger.Debug("Registered component %s with %d dependencies", component.Name(), len(dependsOn))
	return nil
}

// Start starts every component. On the first failure the components already
// started are stopped again and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = m.started[:0]
	for _, c := range m.components {
		begin := time.Now()
		m.logger.Info("Starting %s", c.Name())
		if err := c.Start(ctx); err != nil {
			m.logger.Error("Failed to start %s: %v", c.Name(), err)
			m.stopStarted(context.Background())
			return fmt.Errorf("initialization failed for %s: %w", c.Name(), err)
		}
		m.started = append(m.started, c)
		m.logger.InfoWithFields(c.Name()+" started",
			logging.Field("duration_ms", time.Since(begin).Milliseconds()))
	}
	m.logger.Info("All components started")
	return nil
}

// Stop stops the started components in reverse order. Failures are logged
// and the remaining components are still stopped; the errors are joined.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Stopping all components")
	err := m.stopStarted(ctx)
	m.logger.Info("All components stopped")
	return err
}

func (m *Manager) stopStarted(ctx context.Context) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		c := m.started[i]
		compCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
		err := c.Stop(compCtx)
		cancel()

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			m.logger.Warn("Component %s exceeded shutdown timeout of %s", c.Name(), m.shutdownTimeout)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		case err != nil:
			m.logger.Error("Error stopping %s: %v", c.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name(), err))
		default:
			m.logger.Debug("Stopped %s", c.Name())
		}
	}
	m.started = m.started[:0]
	return errors.Join(errs...)
}

// Running reports whether component was started and not yet stopped.
func (m *Manager) Running(component Component) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.started {
		if c == component {
			return true
		}
	}
	return false
}

// SetShutdownTimeout changes the per-component stop deadline.
func (m *Manager) SetShutdownTimeout(timeout time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownTimeout = timeout
}
