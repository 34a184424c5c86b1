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

package random

import (
	"math/rand/v2"
	"time"

	"github.com/jetsetilly/gopherwire/hardware/bus/coords"
)

// the base seed for all random numbers
var baseSeed uint64

// initialise base seed
func init() {
	baseSeed = uint64(time.Now().UnixNano())
}

// Wire is the interface to the bus implementation.
type Wire interface {
	GetCoords() coords.Coords
}

// Random is a random number generator that is sensitive to time within the
// emulation. Required for reproducible captures and parallel emulations.
type Random struct {
	wire Wire

	// use zero seed rather than the random base seed. this is only really
	// useful for normalised instances where random numbers must be predictable
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(wire Wire) *Random {
	return &Random{
		wire: wire,
	}
}

// translate bus coordinates into a single value
func coordsSum(c coords.Coords) uint64 {
	return uint64(coords.Sum(c))
}

// Replayable generates a random number based on the current bus coordinates.
// The same number is generated for the same coordinates every time, meaning
// the sequence can be reproduced during a replay.
func (rnd *Random) Replayable(n int) int {
	seed := coordsSum(rnd.wire.GetCoords())
	if !rnd.ZeroSeed {
		seed += baseSeed
	}
	return rand.New(rand.NewPCG(seed, seed)).IntN(n)
}

// NoReplay generates a random number that is in no way reproducible. It
// should not be used for anything that is subject to capture/replay.
func (rnd *Random) NoReplay(n int) int {
	if rnd.ZeroSeed {
		return rand.New(rand.NewPCG(0, 0)).IntN(n)
	}
	return rand.IntN(n)
}
