package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/moolen/casa/internal/logging"
)

// DefaultShutdownTimeout is the grace period granted to each component on Stop.
const DefaultShutdownTimeout = 30 * time.Second

// Manager starts components after their dependencies and stops them in reverse.
// A failed Start rolls back every component already started.
type Manager struct {
	mu              sync.Mutex
	components      []Component
	dependsOn       map[Component][]Component
	started         []Component
	shutdownTimeout time.Duration
	logger          *logging.Logger
}

// NewManager creates a manager with DefaultShutdownTimeout.
func NewManager() *Manager {
	return &Manager{
		dependsOn:       make(map[Component][]Component),
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          logging.GetLogger("lifecycle"),
	}
}

// SetShutdownTimeout overrides the per-component grace period.
func (m *Manager) SetShutdownTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownTimeout = d
}

// Register adds a component. Dependencies must be registered first, which also rules
// out cycles.
func (m *Manager) Register(c Component, deps ...Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c == nil {
		return errors.New("cannot register nil component")
	}
	if c.Name() == "" {
		return errors.New("component must have a non-empty name")
	}
	if slices.Contains(m.components, c) {
		return fmt.Errorf("component %s is already registered", c.Name())
	}
	for _, dep := range deps {
		if !slices.Contains(m.components, dep) {
			return fmt.Errorf("dependency %s of %s is not registered", dep.Name(), c.Name())
		}
	}

	m.components = append(m.components, c)
	m.dependsOn[c] = deps
	m.logger.Debug("Registered component %s with %d dependencies", c.Name(), len(deps))
	return nil
}

// startOrder lists components with dependencies first; ties keep registration order.
func (m *Manager) startOrder() []Component {
	seen := make(map[Component]bool, len(m.components))
	order := make([]Component, 0, len(m.components))
	var visit func(c Component)
	visit = func(c Component) {
		if seen[c] {
			return
		}
		seen[c] = true
		for _, dep := range m.dependsOn[c] {
			visit(dep)
		}
		order = append(order, c)
	}
	for _, c := range m.components {
		visit(c)
	}
	return order
}

// Start starts every registered component.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.startOrder() {
		if slices.Contains(m.started, c) {
			continue
		}
		if err := ctx.Err(); err != nil {
			m.rollback()
			return err
		}

		begin := time.Now()
		if err := c.Start(ctx); err != nil {
			m.logger.Error("Failed to start %s: %v", c.Name(), err)
			m.rollback()
			return fmt.Errorf("starting %s: %w", c.Name(), err)
		}
		m.started = append(m.started, c)
		m.logger.Info("%s started (took %dms)", c.Name(), time.Since(begin).Milliseconds())
	}
	return nil
}

// rollback stops started components with a short deadline. Callers hold m.mu.
func (m *Manager) rollback() {
	for i := len(m.started) - 1; i >= 0; i-- {
		c := m.started[i]
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := c.Stop(ctx); err != nil {
			m.logger.Warn("Error stopping %s during rollback: %v", c.Name(), err)
		}
		cancel()
	}
	m.started = nil
}

// Stop stops started components in reverse start order. Errors are logged and joined;
// one failing component does not keep the others running.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		c := m.started[i]
		cctx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
		err := c.Stop(cctx)
		cancel()

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			m.logger.Warn("%s exceeded its %v grace period", c.Name(), m.shutdownTimeout)
			errs = append(errs, fmt.Errorf("stopping %s: %w", c.Name(), err))
		case err != nil:
			m.logger.Error("Error stopping %s: %v", c.Name(), err)
			errs = append(errs, fmt.Errorf("stopping %s: %w", c.Name(), err))
		default:
			m.logger.Info("%s stopped", c.Name())
		}
	}
	m.started = nil
	return errors.Join(errs...)
}

// Running reports whether c has been started and not yet stopped.
func (m *Manager) Running(c Component) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(m.started, c)
}

// Run starts all components, blocks until ctx is cancelled and then stops them.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	m.logger.Info("Shutdown requested")
	return m.Stop(context.Background())
}
