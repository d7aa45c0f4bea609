package scheduler

import "errors"

var (
	// ErrDuplicateJob is returned when a job id is registered twice
	ErrDuplicateJob = errors.New("duplicate job id")

	// ErrJobNotFound is returned when a job id is not registered
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidTrigger is returned when a trigger produces an
	// unparseable schedule
	ErrInvalidTrigger = errors.New("invalid trigger")
)
