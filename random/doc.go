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

// Package random should be used in preference to the math/rand/v2 package
// when a random number is required inside the emulation.
//
// There are two functions belonging to the Random type that return random
// numbers:
//
// Replayable() returns numbers based on the current bus coordinates. It will
// always return the same number for the same coordinates. As such it is
// compatible with the capture/replay system.
//
// NoReplay() returns random numbers regardless of the current bus
// coordinates. It is therefore not compatible with the capture/replay system.
//
// If the same random numbers are required every single time then set ZeroSeed
// to true. This is useful for testing purposes and for the verification
// harness, where runs must be reproducible from a known seed.
package random
