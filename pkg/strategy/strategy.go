package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/knowledge"
)

// Strategy decides an agent's behavior on the day it is selected.
// Implementations mutate the agent's knowledge table and return the
// signal value to leave for the next day.
type Strategy interface {
	Name() string
	Decide(day uint32, signalIn bool, self core.AgentID, known *knowledge.Table) bool
}

// Factory constructs a fresh strategy instance for one agent.
type Factory func() Strategy

var (
	mu       sync.RWMutex
	registry = make(map[string]Factory)
)

// Register makes a strategy available under the given name. Called
// from package init; registering a duplicate name panics.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("strategy %q is already registered", name))
	}
	registry[name] = factory
}

// New returns a fresh instance of the named strategy. An unknown name
// is a configuration error.
func New(name string) (Strategy, error) {
	mu.RLock()
	factory, ok := registry[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
	return factory(), nil
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
