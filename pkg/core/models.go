package core

// AgentID indexes an agent within a world's population, in [0, P).
type AgentID int

// TrialResult is the outcome of one fully terminated trial.
type TrialResult struct {
	Trial uint32
	// FreedOnDay is the day the terminating agent first believed the
	// whole population had been interrogated.
	FreedOnDay uint32
	// AllInterrogatedOnDay is the day ground truth actually reached
	// full coverage. Always <= FreedOnDay.
	AllInterrogatedOnDay uint32
}

// Summary aggregates trial results across an experiment.
type Summary struct {
	TrialCount                uint32
	AverageFreedDay           float64
	AverageAllInterrogatedDay float64
}
