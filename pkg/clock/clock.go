// Package clock supplies the wall-clock capability the core consumes instead
// of calling time.Now() directly, so proof construction is deterministic in
// tests (spec.md §6, §9: "Clock and RNG are passed as capabilities, enabling
// deterministic tests with injected fakes").
package clock

import "time"

// Clock produces the current time. Implementations must return a time with
// an explicit zone offset and nanosecond resolution, since proof bodies are
// stamped with RFC3339 nanosecond timestamps (spec.md §4.4).
type Clock interface {
	Now() time.Time
}

// System is the default Clock backed by time.Now().
type System struct{}

// Now returns the current local time.
func (System) Now() time.Time { return time.Now() }

// Fixed is a Clock that always returns the same instant, useful for
// deterministic tests.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.At }
