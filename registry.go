package drover

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Options configures session construction. Fields a factory does not
// understand are ignored by it.
type Options struct {
	Host       string // debug endpoint host; factories default to localhost
	Port       int    // debug endpoint port; 0 lets a launching factory pick one
	Headless   bool
	BinaryPath string // explicit browser binary; factories auto-detect if empty
	Logger     *slog.Logger
}

// SessionFactory constructs a live session for one browser type.
type SessionFactory func(ctx context.Context, opts Options) (Session, error)

// Registry maps browser-type names to session factories. It is an explicit
// value passed to whoever constructs sessions; there is no process-wide
// registration.
type Registry struct {
	factories map[string]SessionFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]SessionFactory)}
}

// Register adds or replaces the factory for a browser name.
func (r *Registry) Register(name string, f SessionFactory) {
	r.factories[name] = f
}

// New constructs a session for the named browser type.
func (r *Registry) New(ctx context.Context, browser string, opts Options) (Session, error) {
	f, ok := r.factories[browser]
	if !ok {
		return nil, fmt.Errorf("unknown browser %q (registered: %v)", browser, r.Browsers())
	}
	return f(ctx, opts)
}

// Browsers returns the registered browser names, sorted.
func (r *Registry) Browsers() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
