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

package harness

import (
	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware/bus"
)

// shapeObserver watches the resolved line levels, checking that the data line
// only ever changes during a clock-high period for a start or a stop
// condition, and that those conditions arrive in the right order.
//
// An error returned from Tick() interrupts the bus commit, surfacing the
// violation through the machine's Step() function.
type shapeObserver struct {
	scl bool
	sda bool

	// a start condition has been seen with no stop condition yet
	open bool

	starts int
	stops  int

	// the number of ticks observed. the difference between two readings of
	// this field is the duration of whatever happened in between
	ticks int
}

func newShapeObserver() *shapeObserver {
	return &shapeObserver{
		// the lines idle high before the first commit
		scl: true,
		sda: true,
	}
}

// Tick implements the bus.Tracer interface.
func (shp *shapeObserver) Tick(lv bus.Levels) error {
	defer func() {
		shp.scl = lv.SCL
		shp.sda = lv.SDA
	}()

	shp.ticks++

	// nothing to judge unless the data line moved during a clock-high period
	if !shp.scl || !lv.SCL || shp.sda == lv.SDA {
		return nil
	}

	if !lv.SDA {
		// the data line fell: a start condition
		if shp.open {
			return curated.Errorf("shape: start condition inside an open transaction at %s", lv.Coords)
		}
		shp.open = true
		shp.starts++
		return nil
	}

	// the data line rose: a stop condition
	if !shp.open {
		return curated.Errorf("shape: stop condition with no transaction open at %s", lv.Coords)
	}
	shp.open = false
	shp.stops++

	return nil
}
