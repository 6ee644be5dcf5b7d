// Package startup sequences external dependency initialization with
// fibonacci backoff between attempts.
package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
)

// Dependency is one external resource the service needs before serving
type Dependency interface {
	GetName() string
	DependsOn() []string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Status int

const (
	StatusPending Status = iota
	StatusStarted
	StatusStopped
	StatusFailed
)

// Startup starts dependencies in registration order, honoring DependsOn
// edges, and stops them in reverse.
type Startup struct {
	order        []string
	dependencies map[string]Dependency
	statuses     map[string]Status
	logger       ectologger.Logger
	maxAttempts  int
}

func New(logger ectologger.Logger, maxAttempts int) *Startup {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Startup{
		dependencies: make(map[string]Dependency),
		statuses:     make(map[string]Status),
		logger:       logger,
		maxAttempts:  maxAttempts,
	}
}

func (s *Startup) AddDependency(dependency Dependency) {
	name := dependency.GetName()
	if _, exists := s.dependencies[name]; !exists {
		s.order = append(s.order, name)
	}
	s.dependencies[name] = dependency
}

// Start brings up every dependency, retrying the full pass with fibonacci
// backoff until maxAttempts is exhausted.
func (s *Startup) Start(ctx context.Context) error {
	var lastErr error

	a, b := 1, 1
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		s.logger.WithFields(map[string]any{"attempt": attempt}).Info("Beginning startup attempt")

		lastErr = nil
		for _, name := range s.order {
			if err := s.startDependency(ctx, s.dependencies[name]); err != nil {
				lastErr = err
				break
			}
		}

		if lastErr == nil {
			return nil
		}

		if attempt >= s.maxAttempts {
			return fmt.Errorf("startup failed after %d attempts: %w", attempt, lastErr)
		}

		s.logger.WithFields(map[string]any{
			"attempt":      attempt,
			"max_attempts": s.maxAttempts,
			"wait_seconds": a,
		}).Warn("Startup attempt failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(a) * time.Second):
		}

		a, b = b, a+b
	}

	return lastErr
}

func (s *Startup) startDependency(ctx context.Context, dependency Dependency) error {
	name := dependency.GetName()
	if s.statuses[name] == StatusStarted {
		return nil
	}

	for _, parent := range dependency.DependsOn() {
		dep, ok := s.dependencies[parent]
		if !ok {
			return fmt.Errorf("dependency '%s' depends on unregistered '%s'", name, parent)
		}
		if s.statuses[parent] != StatusStarted {
			if err := s.startDependency(ctx, dep); err != nil {
				return err
			}
		}
	}

	s.logger.WithFields(map[string]any{"dependency": name}).Info("Starting dependency")
	s.statuses[name] = StatusPending
	if err := dependency.Start(ctx); err != nil {
		s.statuses[name] = StatusFailed
		s.logger.WithError(err).WithFields(map[string]any{"dependency": name}).Error("Failed to start dependency")
		return err
	}
	s.statuses[name] = StatusStarted
	return nil
}

// Stop stops started dependencies in reverse registration order. The first
// failure aborts the teardown.
func (s *Startup) Stop(ctx context.Context) error {
	for i := len(s.order) - 1; i >= 0; i-- {
		name := s.order[i]
		if s.statuses[name] != StatusStarted {
			continue
		}

		dependency := s.dependencies[name]
		s.logger.WithFields(map[string]any{"dependency": name}).Info("Stopping dependency")
		if err := dependency.Stop(ctx); err != nil {
			s.logger.WithError(err).WithFields(map[string]any{"dependency": name}).Error("Failed to stop dependency")
			return err
		}
		s.statuses[name] = StatusStopped
	}
	return nil
}

// FuncDependency adapts start/stop closures to the Dependency interface
type FuncDependency struct {
	Name      string
	Needs     []string
	StartFunc func(ctx context.Context) error
	StopFunc  func(ctx context.Context) error
}

func (f *FuncDependency) GetName() string     { return f.Name }
func (f *FuncDependency) DependsOn() []string { return f.Needs }

func (f *FuncDependency) Start(ctx context.Context) error {
	if f.StartFunc == nil {
		return nil
	}
	return f.StartFunc(ctx)
}

func (f *FuncDependency) Stop(ctx context.Context) error {
	if f.StopFunc == nil {
		return nil
	}
	return f.StopFunc(ctx)
}
