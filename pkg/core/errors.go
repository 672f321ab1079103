package core

import "errors"

var (
	// ErrInvariantViolation means an agent reported knowledge of more
	// interrogations than have truly occurred. This is a logic defect
	// in the protocol, not a recoverable runtime condition.
	ErrInvariantViolation = errors.New("agent knowledge exceeds ground truth")

	// ErrMaxDaysExceeded means a trial ran past its configured safety
	// bound before terminating.
	ErrMaxDaysExceeded = errors.New("maximum simulation days exceeded")
)
