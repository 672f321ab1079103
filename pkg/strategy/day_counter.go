package strategy

import (
	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/knowledge"
)

// DayCounter is the name of the baseline relay protocol.
const DayCounter = "day-counter"

func init() {
	Register(DayCounter, func() Strategy { return dayCounter{} })
}

// dayCounter implements the fixed calendar protocol: day d is assigned
// to agent d mod P. An agent selected on day d reads the switch as
// "yesterday's occupant knew agent (d-1) mod P had been interrogated",
// and leaves the switch reporting whether it knows today's assignee
// has been. Knowledge relays forward one slot per day.
type dayCounter struct{}

func (dayCounter) Name() string { return DayCounter }

func (dayCounter) Decide(day uint32, signalIn bool, self core.AgentID, known *knowledge.Table) bool {
	// Being selected proves the agent itself has been interrogated.
	known.Mark(self)

	p := uint32(known.Size())
	if day > 0 && signalIn {
		known.Mark(core.AgentID((day - 1) % p))
	}

	return known.Knows(core.AgentID(day % p))
}
