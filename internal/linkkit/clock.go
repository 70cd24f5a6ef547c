package linkkit

import "time"

// Clock supplies the current time for expiry decisions.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewSystemClock returns a Clock backed by the system wall clock in UTC.
func NewSystemClock() Clock { return systemClock{} }
