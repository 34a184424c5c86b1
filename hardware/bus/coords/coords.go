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

// Package coords represents and can work with bus coordinates.
//
// Coordinates represent the state of the emulation from the point of view of
// the bus. A good way to think about them is as a measurement of time. They
// define *when* something happened (this line transition, this
// acknowledgement, etc.) relative to the start of the emulation.
//
// They are used throughout the emulation for recording/playback, seeding of
// random numbers and regression fingerprinting.
package coords

import "fmt"

// Coords represents the state of the bus at any moment in time. It can be
// used when both values need to be stored or passed around.
type Coords struct {
	// number of completed transactions since power-on
	Transaction int

	// number of ticks since the start of the transaction
	Tick int
}

func (c Coords) String() string {
	return fmt.Sprintf("Transaction: %d  Tick: %06d", c.Transaction, c.Tick)
}

// Equal compares two instances of Coords and returns true if both are equal.
func Equal(A, B Coords) bool {
	return A.Transaction == B.Transaction && A.Tick == B.Tick
}

// GreaterThanOrEqual compares two instances of Coords and returns true if A
// is later than or concurrent with B.
func GreaterThanOrEqual(A, B Coords) bool {
	return A.Transaction > B.Transaction || (A.Transaction == B.Transaction && A.Tick >= B.Tick)
}

// GreaterThan compares two instances of Coords and returns true if A is
// strictly later than B.
func GreaterThan(A, B Coords) bool {
	return A.Transaction > B.Transaction || (A.Transaction == B.Transaction && A.Tick > B.Tick)
}

// Sum converts coordinates into a single value. The sum of two different
// coordinates will differ so long as neither field is negative and the tick
// count fits in 32 bits.
func Sum(c Coords) int64 {
	return int64(c.Transaction)<<32 + int64(c.Tick)
}
