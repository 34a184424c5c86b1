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

package bus

import (
	"fmt"
	"math/bits"
)

// DriverID is the handle given to a device when it joins the bus. Devices
// use the ID to identify themselves to the PullLow() and Release() functions.
type DriverID int

// Line models a single open-drain wire. The zero value is a released line,
// which resolves to the high state.
//
// Each driver's contribution is recorded separately. A line pulled low by two
// devices stays low until both devices have released it.
type Line struct {
	Label string

	// one bit per driver. a set bit means the driver is pulling the line low
	pulls uint64
}

// NewLine is the preferred method of initialisation for the Line type.
func NewLine(label string) Line {
	return Line{Label: label}
}

func (l Line) String() string {
	if l.Level() {
		return fmt.Sprintf("%s: high", l.Label)
	}
	return fmt.Sprintf("%s: low (%d holding)", l.Label, bits.OnesCount64(l.pulls))
}

// PullLow drives the line low on behalf of the identified device. Pulling an
// already held line is a no-op.
func (l *Line) PullLow(id DriverID) {
	l.pulls |= 1 << id
}

// Release stops the identified device driving the line. The line only
// returns to the high state once every device has released it.
func (l *Line) Release(id DriverID) {
	l.pulls &^= 1 << id
}

// Level returns the resolved level of the line. True indicates the high
// state.
func (l Line) Level() bool {
	return l.pulls == 0
}

// HeldBy returns true if the identified device is currently pulling the line
// low.
func (l Line) HeldBy(id DriverID) bool {
	return l.pulls&(1<<id) != 0
}

// reset releases the line for all drivers.
func (l *Line) reset() {
	l.pulls = 0
}
