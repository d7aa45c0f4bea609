package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger determines when a job fires. Each variant compiles to a
// standard 5-field cron expression; next-occurrence computation is pure
// and independent of the execution engine.
type Trigger interface {
	Spec() string
}

// Daily fires once a day at a fixed hour and minute.
type Daily struct {
	Hour   int
	Minute int
}

func (t Daily) Spec() string {
	return fmt.Sprintf("%d %d * * *", t.Minute, t.Hour)
}

// Weekly fires once a week on a fixed weekday at a fixed hour and minute.
type Weekly struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
}

func (t Weekly) Spec() string {
	return fmt.Sprintf("%d %d * * %d", t.Minute, t.Hour, int(t.Weekday))
}

// EveryHours fires on every hour divisible by N, at minute zero.
type EveryHours struct {
	N int
}

func (t EveryHours) Spec() string {
	return fmt.Sprintf("0 */%d * * *", t.N)
}

// NextOccurrence computes the trigger's next fire time strictly after
// now. A zero time means the trigger has no further occurrences.
func NextOccurrence(t Trigger, now time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(t.Spec())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidTrigger, t.Spec(), err)
	}
	return schedule.Next(now), nil
}
