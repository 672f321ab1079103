package core

// Environment defines one simulated world advanced a day at a time
type Environment interface {
	// Advance progresses the world by one day
	Advance() error
	// Done reports whether the world has terminated
	Done() bool
	// Day returns the current day counter
	Day() uint32
	// BestKnown returns the highest known-interrogated count across agents
	BestKnown() uint32
	// Result returns the trial outcome once the world has terminated
	Result() (TrialResult, error)
}
