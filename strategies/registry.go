// Package strategies holds the built-in strategy families and the registry
// the CLI resolves strategy names against.
package strategies

import (
	"fmt"
	"sort"
	"sync"

	"quantlab/internal/engine"
	"quantlab/strategies/donchian"
	"quantlab/strategies/emacross"
	"quantlab/types"
)

type Entry struct {
	Type        engine.StrategyType
	Description string
	// DefaultGrid is searched when the caller does not supply a grid.
	DefaultGrid types.ParamGrid
}

// Registry is read-only after construction and safe for concurrent use.
type Registry struct {
	entries map[string]Entry
	names   []string
}

func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		if e.Type == nil {
			return nil, fmt.Errorf("registry entry without a strategy type")
		}
		name := e.Type.Name()
		if _, dup := r.entries[name]; dup {
			return nil, fmt.Errorf("strategy %q registered twice", name)
		}
		r.entries[name] = e
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

func (r *Registry) Lookup(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q (known: %v)", engine.ErrUnknownStrategy, name, r.names)
	}
	return e, nil
}

// Names returns the registered names in lexicographic order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry of built-in strategies.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(
			Entry{
				Type:        emacross.Type,
				Description: "EMA crossover with trend EMA and RSI filters",
				DefaultGrid: emacross.DefaultGrid(),
			},
			Entry{
				Type:        emacross.SimpleType,
				Description: "EMA crossover without filters",
				DefaultGrid: emacross.DefaultGrid(),
			},
			Entry{
				Type:        donchian.Type,
				Description: "Donchian channel breakout with optional ATR stop",
				DefaultGrid: donchian.DefaultGrid(),
			},
		)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
