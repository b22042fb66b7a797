package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current time to sweeps and to the default
// aggregation target date. Pure logic never calls time.Now directly so
// tests can pin "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystem() Clock { return systemClock{} }

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Today truncates t to its calendar date in t's location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var Module = fx.Options(
	fx.Provide(NewSystem),
)
