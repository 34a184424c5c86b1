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

func TestOpenDrain(t *testing.T) {
	b := bus.NewBus()

	m, err := b.Join("master")
	test.DemandSuccess(t, err)
	s, err := b.Join("slave")
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, m, s)

	// line idles high
	test.ExpectEquality(t, b.SDA.Level(), true)

	// either device can pull the line low
	b.SDA.PullLow(m)
	test.ExpectEquality(t, b.SDA.Level(), false)

	// a line held by two devices stays low until both have released it
	b.SDA.PullLow(s)
	b.SDA.Release(m)
	test.ExpectEquality(t, b.SDA.Level(), false)
	b.SDA.Release(s)
	test.ExpectEquality(t, b.SDA.Level(), true)

	// releasing a line that isn't held is a no-op
	b.SDA.Release(s)
	test.ExpectEquality(t, b.SDA.Level(), true)
}

func TestHolders(t *testing.T) {
	b := bus.NewBus()

	m, err := b.Join("master")
	test.DemandSuccess(t, err)
	s, err := b.Join("slave")
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, b.Label(m), "master")
	test.ExpectEquality(t, b.Label(s), "slave")

	b.SCL.PullLow(m)
	b.SDA.PullLow(s)

	h := b.Holders(b.SCL)
	test.DemandEquality(t, len(h), 1)
	test.ExpectEquality(t, h[0], "master")

	h = b.Holders(b.SDA)
	test.DemandEquality(t, len(h), 1)
	test.ExpectEquality(t, h[0], "slave")
}

// the level returned by Sample() is the level resolved by the most recent
// Commit(), not the instantaneous line level
func TestSampleDelay(t *testing.T) {
	b := bus.NewBus()

	m, err := b.Join("master")
	test.DemandSuccess(t, err)

	b.SDA.PullLow(m)

	// not yet committed. sample still returns the idle level
	_, sda := b.Sample()
	test.ExpectEquality(t, sda, true)

	err = b.Commit()
	test.ExpectSuccess(t, err)
	_, sda = b.Sample()
	test.ExpectEquality(t, sda, false)

	b.SDA.Release(m)
	_, sda = b.Sample()
	test.ExpectEquality(t, sda, false)

	err = b.Commit()
	test.ExpectSuccess(t, err)
	_, sda = b.Sample()
	test.ExpectEquality(t, sda, true)
}

type recordingTracer struct {
	levels []bus.Levels
}

func (rt *recordingTracer) Tick(lv bus.Levels) error {
	rt.levels = append(rt.levels, lv)
	return nil
}

func TestTracerForwarding(t *testing.T) {
	b := bus.NewBus()

	m, err := b.Join("master")
	test.DemandSuccess(t, err)

	rt := &recordingTracer{}
	b.AddTracer(rt)

	err = b.Commit()
	test.ExpectSuccess(t, err)
	b.SCL.PullLow(m)
	err = b.Commit()
	test.ExpectSuccess(t, err)

	test.DemandEquality(t, len(rt.levels), 2)
	test.ExpectEquality(t, rt.levels[0].SCL, true)
	test.ExpectEquality(t, rt.levels[0].SDA, true)
	test.ExpectEquality(t, rt.levels[1].SCL, false)
	test.ExpectEquality(t, rt.levels[1].SDA, true)

	// tick coordinate advances with every commit
	test.ExpectEquality(t, rt.levels[0].Coords.Tick, 1)
	test.ExpectEquality(t, rt.levels[1].Coords.Tick, 2)
}

func TestCoords(t *testing.T) {
	b := bus.NewBus()

	for range 5 {
		err := b.Commit()
		test.ExpectSuccess(t, err)
	}
	c := b.GetCoords()
	test.ExpectEquality(t, c.Transaction, 0)
	test.ExpectEquality(t, c.Tick, 5)

	b.EndTransaction()
	c = b.GetCoords()
	test.ExpectEquality(t, c.Transaction, 1)
	test.ExpectEquality(t, c.Tick, 0)
}
