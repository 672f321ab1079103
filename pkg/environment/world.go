package environment

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/jeklund/prisonlight/pkg/agent"
	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/knowledge"
	"github.com/jeklund/prisonlight/pkg/strategy"
)

// Status is the lifecycle state of a world.
type Status string

const (
	StatusRunning    Status = "running"
	StatusTerminated Status = "terminated"
)

// Selector picks the prisoner to interrogate each day. The default is
// uniform random; tests substitute scripted sequences.
type Selector interface {
	Next() core.AgentID
}

type uniformSelector struct {
	rng        *rand.Rand
	population int
}

func (s *uniformSelector) Next() core.AgentID {
	return core.AgentID(s.rng.Intn(s.population))
}

var _ core.Environment = (*World)(nil)

// World owns the prisoner population, the shared light-switch signal,
// and the day counter, and applies the per-day transition rule. It
// also tracks ground truth (which prisoners have actually been
// interrogated) to validate agent beliefs against.
//
// A world is owned exclusively by one trial and is not safe for
// concurrent use.
type World struct {
	agents   []*agent.Prisoner
	signal   bool
	day      uint32
	status   Status
	selector Selector

	// ground truth, never visible to agents
	interrogated *knowledge.Table
	firstAllDay  uint32
	haveFirstAll bool

	freedOnDay uint32
}

type worldParams struct {
	strategyName string
	selector     Selector
	rng          *rand.Rand
}

// Option configures a World.
type Option func(*worldParams)

// WithStrategy selects the agent strategy by registered name.
func WithStrategy(name string) Option {
	return func(p *worldParams) {
		p.strategyName = name
	}
}

// WithSelector substitutes the daily selection source. Used by tests
// to script deterministic interrogation sequences.
func WithSelector(s Selector) Option {
	return func(p *worldParams) {
		p.selector = s
	}
}

// WithRand supplies the random source for uniform selection. Each
// trial should pass its own independently seeded generator.
func WithRand(rng *rand.Rand) Option {
	return func(p *worldParams) {
		p.rng = rng
	}
}

// New creates a world with population prisoners, empty knowledge, the
// switch off, and the day counter at zero.
func New(population int, opts ...Option) (*World, error) {
	if population < 1 {
		return nil, fmt.Errorf("population must be at least 1, got %d", population)
	}

	params := &worldParams{
		strategyName: strategy.DayCounter,
	}
	for _, opt := range opts {
		opt(params)
	}

	if params.selector == nil {
		rng := params.rng
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		params.selector = &uniformSelector{rng: rng, population: population}
	}

	agents := make([]*agent.Prisoner, population)
	for i := range agents {
		strat, err := strategy.New(params.strategyName)
		if err != nil {
			return nil, err
		}
		agents[i] = agent.NewPrisoner(core.AgentID(i), population, strat)
	}

	return &World{
		agents:       agents,
		status:       StatusRunning,
		selector:     params.selector,
		interrogated: knowledge.NewTable(population),
	}, nil
}

// Advance runs one day: select a prisoner uniformly, record ground
// truth, let the prisoner decide the switch, validate its belief, and
// either terminate or move to the next day.
func (w *World) Advance() error {
	if w.status == StatusTerminated {
		return errors.New("cannot advance a terminated world")
	}

	chosen := w.selector.Next()
	w.interrogated.Mark(chosen)

	w.signal = w.agents[chosen].Decide(w.day, w.signal)

	actual := w.interrogated.Count()
	reported := w.agents[chosen].CountKnown()
	if reported > actual {
		return fmt.Errorf("day %d: agent %d reports %d interrogations but only %d occurred: %w",
			w.day, chosen, reported, actual, core.ErrInvariantViolation)
	}

	if !w.haveFirstAll && w.interrogated.Complete() {
		w.firstAllDay = w.day
		w.haveFirstAll = true
	}

	if reported == uint32(len(w.agents)) {
		w.freedOnDay = w.day
		w.status = StatusTerminated
		return nil
	}

	w.day++
	return nil
}

// Done reports whether the world has terminated.
func (w *World) Done() bool {
	return w.status == StatusTerminated
}

// Status returns the world's lifecycle state.
func (w *World) Status() Status {
	return w.status
}

// Day returns the current day counter.
func (w *World) Day() uint32 {
	return w.day
}

// Signal returns the current switch state.
func (w *World) Signal() bool {
	return w.signal
}

// Population returns the number of prisoners.
func (w *World) Population() int {
	return len(w.agents)
}

// BestKnown returns the highest known-interrogated count across all
// prisoners, the progress metric reported in periodic logs.
func (w *World) BestKnown() uint32 {
	var best uint32
	for _, a := range w.agents {
		if n := a.CountKnown(); n > best {
			best = n
		}
	}
	return best
}

// Result returns the trial outcome. It is an error to call it before
// the world has terminated. Full belief implies full ground truth, so
// the completion day is always recorded by termination time; a missing
// one indicates a defect and is reported as such.
func (w *World) Result() (core.TrialResult, error) {
	if w.status != StatusTerminated {
		return core.TrialResult{}, errors.New("world has not terminated")
	}
	if !w.haveFirstAll {
		return core.TrialResult{}, fmt.Errorf("terminated on day %d without full ground-truth coverage: %w",
			w.freedOnDay, core.ErrInvariantViolation)
	}
	return core.TrialResult{
		FreedOnDay:           w.freedOnDay,
		AllInterrogatedOnDay: w.firstAllDay,
	}, nil
}
