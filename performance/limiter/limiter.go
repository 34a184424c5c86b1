// This file is part of GopherWire.
//
// GopherWire is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherWire is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherWire.  If not, see <https://www.gnu.org/licenses/>.

// Package limiter provides a rough and ready way of limiting events to a fixed
// rate.
//
// A new RateLimiter can be created with (error handling removed for clarity):
//
//	lim, _ := limiter.NewRateLimiter(60)
//
// Operations can then be stalled with the Wait() function. For example:
//
//	for {
//		lim.Wait()
//		updateDisplay()
//	}
//
// Alternatively the HasWaited() function can be polled from a loop that must
// not block, as when deciding whether to refresh a progress meter.
package limiter

import (
	"fmt"
	"time"
)

// this is a really rough attempt at rate limiting. probably only any good if
// base performance of the machine is well above the required rate.

// RateLimiter will trigger every events per second
type RateLimiter struct {
	eventsPerSecond int
	secondsPerEvent time.Duration

	tick chan bool
}

// NewRateLimiter is the preferred method of initialisation for RateLimiter type
func NewRateLimiter(eventsPerSecond int) (*RateLimiter, error) {
	lim := &RateLimiter{}
	lim.SetLimit(eventsPerSecond)

	lim.tick = make(chan bool)

	// run ticker concurrently
	go func() {
		adjustedSecondPerEvent := lim.secondsPerEvent
		t := time.Now()
		for {
			lim.tick <- true
			time.Sleep(adjustedSecondPerEvent)
			nt := time.Now()
			adjustedSecondPerEvent -= nt.Sub(t) - lim.secondsPerEvent
			t = nt
		}
	}()

	return lim, nil
}

// SetLimit changes the limit at which the RateLimiter waits
func (lim *RateLimiter) SetLimit(eventsPerSecond int) {
	lim.eventsPerSecond = eventsPerSecond
	lim.secondsPerEvent, _ = time.ParseDuration(fmt.Sprintf("%fs", float64(1.0)/float64(eventsPerSecond)))
}

// Wait will block until trigger
func (lim *RateLimiter) Wait() {
	<-lim.tick
}

// HasWaited will return true if time has already elapsed and false it it is
// still yet to happen
func (lim *RateLimiter) HasWaited() bool {
	select {
	case <-lim.tick:
		return true
	default:
		// default case means that the channel receiving case doesn't block
		return false
	}
}
