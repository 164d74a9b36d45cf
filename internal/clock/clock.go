// Package clock defines the time source used by the pipeline stages.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Fixed is a Clock frozen at a single instant. Tests use it to pin
// ledger timestamps, scraping dates, and the copyright cut-off.
type Fixed time.Time

// Now returns the frozen instant.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
