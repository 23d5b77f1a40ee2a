package pipeline

import "time"

// TimeProvider supplies the clock used to stamp run records and to decide
// which completed runs the retention sweep may drop. Tests substitute a
// fixed provider to drive cleanup deterministically.
type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}
