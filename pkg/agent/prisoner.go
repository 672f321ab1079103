package agent

import (
	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/knowledge"
	"github.com/jeklund/prisonlight/pkg/strategy"
)

// Prisoner is one simulated participant. It holds a private knowledge
// table and delegates the per-turn decision to its strategy.
//
// Invariant: the knowledge table is a subset of the truly interrogated
// set at every point in time. The world checks this after every turn.
type Prisoner struct {
	id       core.AgentID
	known    *knowledge.Table
	strategy strategy.Strategy
}

// NewPrisoner creates a prisoner with empty knowledge. population is
// the total number of prisoners in the world.
func NewPrisoner(id core.AgentID, population int, strat strategy.Strategy) *Prisoner {
	return &Prisoner{
		id:       id,
		known:    knowledge.NewTable(population),
		strategy: strat,
	}
}

// ID returns the prisoner's index in the population.
func (p *Prisoner) ID() core.AgentID {
	return p.id
}

// Decide runs the prisoner's strategy for the day it was selected and
// returns the signal value to leave behind.
func (p *Prisoner) Decide(day uint32, signalIn bool) bool {
	return p.strategy.Decide(day, signalIn, p.id, p.known)
}

// CountKnown returns how many prisoners this one knows to have been
// interrogated. Used only for termination checking.
func (p *Prisoner) CountKnown() uint32 {
	return p.known.Count()
}

// Knows reports whether this prisoner knows id has been interrogated.
func (p *Prisoner) Knows(id core.AgentID) bool {
	return p.known.Knows(id)
}
