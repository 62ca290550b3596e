package schedule

import (
	"time"

	"github.com/jonboulle/clockwork"

	"livesched-engine/internal/domain"
)

const DefaultStartingSoon = 60 * time.Minute

// Classifier tells whether a job is on air or about to start.
type Classifier struct {
	clock clockwork.Clock
	loc   *time.Location
	soon  time.Duration
}

// NewClassifier falls back to the real clock, time.Local and
// DefaultStartingSoon for zero arguments.
func NewClassifier(clock clockwork.Clock, loc *time.Location, soon time.Duration) *Classifier {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	if soon <= 0 {
		soon = DefaultStartingSoon
	}
	return &Classifier{clock: clock, loc: loc, soon: soon}
}

func (c *Classifier) IsActive(job domain.Job) bool {
	return c.ActiveAt(job, c.clock.Now())
}

// ActiveAt reports whether now is inside the job's slot, or at most the
// starting-soon window before it. Jobs with unreadable date or slot are never
// active.
func (c *Classifier) ActiveAt(job domain.Job, now time.Time) bool {
	day, ok := ParseDate(job.Get(domain.FieldDate), c.loc)
	if !ok {
		return false
	}
	startMin, endMin, ok := parseSlot(job.Get(domain.FieldTimeSlot))
	if !ok {
		return false
	}

	start := atMinute(day, startMin)
	end := atMinute(day, endMin)
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}

	if !now.Before(start) && now.Before(end) {
		return true
	}
	return now.Before(start) && start.Sub(now) <= c.soon
}
