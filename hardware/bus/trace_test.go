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

package bus_test

import (
	"testing"

	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/test"
)

func TestTraceIdlesHigh(t *testing.T) {
	tr := bus.NewTrace("SDA")

	// a freshly initialised trace represents a line that has been high
	// forever. ticking another high value must not look like a rising edge
	test.ExpectEquality(t, tr.Hi(), true)
	tr.Tick(true)
	test.ExpectEquality(t, tr.Rising(), false)
	test.ExpectEquality(t, tr.Changed(), false)
	test.ExpectEquality(t, tr.Hi(), true)
}

func TestTraceEdges(t *testing.T) {
	tr := bus.NewTrace("SDA")

	tr.Tick(false)
	test.ExpectEquality(t, tr.Falling(), true)
	test.ExpectEquality(t, tr.Rising(), false)
	test.ExpectEquality(t, tr.Changed(), true)
	test.ExpectEquality(t, tr.Lo(), true)

	// holding the line low is not an edge
	tr.Tick(false)
	test.ExpectEquality(t, tr.Falling(), false)
	test.ExpectEquality(t, tr.Changed(), false)
	test.ExpectEquality(t, tr.Lo(), true)

	tr.Tick(true)
	test.ExpectEquality(t, tr.Rising(), true)
	test.ExpectEquality(t, tr.Falling(), false)
	test.ExpectEquality(t, tr.Hi(), true)
}

func TestTraceActivity(t *testing.T) {
	tr := bus.NewTrace("SCL")

	// activity record is a fixed length window over the most recent ticks
	n := len(tr.Activity)

	for range 10 {
		tr.Tick(false)
	}
	test.ExpectEquality(t, len(tr.Activity), n)
	test.ExpectEquality(t, tr.Activity[n-1], false)
	test.ExpectEquality(t, tr.Activity[n-10], false)
	test.ExpectEquality(t, tr.Activity[n-11], true)
}

func TestTraceSnapshot(t *testing.T) {
	tr := bus.NewTrace("SDA")
	tr.Tick(false)

	sn := tr.Snapshot()
	test.ExpectEquality(t, sn.Lo(), true)

	// the snapshot must be a deep copy. further ticks on the original leave
	// the snapshot untouched
	tr.Tick(true)
	test.ExpectEquality(t, tr.Hi(), true)
	test.ExpectEquality(t, sn.Lo(), true)
	test.ExpectEquality(t, sn.Activity[len(sn.Activity)-1], false)
}
