package messaging

import "time"

// Kind classifies an observation emitted by a trial runner.
type Kind string

const (
	// KindProgress is a periodic in-trial progress sample.
	KindProgress Kind = "progress"
	// KindTrialDone marks a trial's termination.
	KindTrialDone Kind = "trial_done"
)

// Observation is one progress sample from a running trial: the day it
// was taken and the best known-interrogated count across the
// population at that point.
type Observation struct {
	Kind      Kind
	Trial     uint32
	Day       uint32
	BestKnown uint32
	Timestamp time.Time
}

// Broker routes observations from trial runners to observers.
type Broker interface {
	// Publish broadcasts an observation to all subscribers
	Publish(obs Observation) error
	// Subscribe registers an observer to receive observations
	Subscribe(id string, ch chan<- Observation) error
	// Unsubscribe removes an observer's subscription
	Unsubscribe(id string) error
}
