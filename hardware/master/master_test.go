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

package master_test

import (
	"testing"

	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/test"
)

func newTestMaster(t *testing.T) (*master.Master, *bus.Bus) {
	t.Helper()

	b := bus.NewBus()

	env, err := environment.NewEnvironment(environment.MainEmulation, b, nil)
	test.DemandSuccess(t, err)
	env.Normalise()

	m, err := master.NewMaster(env, b)
	test.DemandSuccess(t, err)

	return m, b
}

func TestDividerLimits(t *testing.T) {
	m, _ := newTestMaster(t)

	test.ExpectFailure(t, m.SetDivider(0))
	test.ExpectFailure(t, m.SetDivider(1))
	test.ExpectSuccess(t, m.SetDivider(master.MinDivider))
	test.ExpectSuccess(t, m.SetDivider(100))
	test.ExpectEquality(t, m.Divider(), 100)
}

// a master on a bus with no other devices. every transaction ends with the
// acknowledgement error after the address frame.
func TestUnacknowledged(t *testing.T) {
	m, b := newTestMaster(t)
	test.DemandSuccess(t, m.SetDivider(4))

	m.Begin(master.Writing, 0x44, 0x123)
	test.ExpectSuccess(t, m.Busy())

	ct := 0
	for m.Busy() {
		m.Step()
		test.DemandSuccess(t, b.Commit())
		ct++
	}

	test.ExpectSuccess(t, m.AckError())
	test.ExpectEquality(t, m.ReadData(), 0)

	// the transaction is cut short after the address frame and its
	// acknowledgement slot
	test.ExpectApproximate(t, ct, (8+1+1)*2*4, 0.1)

	// both lines have returned to their idle levels
	scl, sda := b.Sample()
	test.ExpectSuccess(t, scl)
	test.ExpectSuccess(t, sda)

	// the error is sticky until the next transaction is accepted
	test.ExpectSuccess(t, m.AckError())
	m.Begin(master.Reading, 0x44, 0)
	test.ExpectSuccess(t, !m.AckError())
}

func TestBeginMasking(t *testing.T) {
	m, _ := newTestMaster(t)

	// address is seven bits, payload is twelve
	m.Begin(master.Writing, 0xff, 0xffff)
	test.ExpectEquality(t, m.Address, 0x7f)
	test.ExpectSuccess(t, m.Busy())
}

func TestDirectionString(t *testing.T) {
	test.ExpectEquality(t, master.Writing.String(), "writing")
	test.ExpectEquality(t, master.Reading.String(), "reading")
}
