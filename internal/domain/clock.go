package domain

import "github.com/jonboulle/clockwork"

// clock stamps Snapshot.GeneratedAt.
var clock = clockwork.NewRealClock()

// SetClock swaps the snapshot time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
