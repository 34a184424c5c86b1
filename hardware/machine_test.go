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

package hardware_test

import (
	"fmt"
	"testing"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/test"
)

func newTestMachine(t *testing.T) *hardware.Machine {
	t.Helper()

	m, err := hardware.NewMachine(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)

	// tests must not be affected by any preferences on disk
	m.Env.Normalise()

	return m
}

func TestWriteTransaction(t *testing.T) {
	m := newTestMachine(t)

	v, err := m.Do(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0x5a3,
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x5a3)
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x5a3)

	test.ExpectSuccess(t, !m.Master.Busy())
	test.ExpectSuccess(t, !m.Master.AckError())
}

func TestRoundTrip(t *testing.T) {
	for _, div := range []int{2, 3, 4, 8} {
		t.Run(fmt.Sprintf("divider=%d", div), func(t *testing.T) {
			m := newTestMachine(t)
			test.DemandSuccess(t, m.Env.Prefs.Divider.Set(div))

			for _, v := range []uint16{0x000, 0x001, 0x800, 0xfff, 0x5a3, 0xa5a} {
				_, err := m.Do(hardware.Transaction{
					Direction: master.Writing,
					Address:   0x50,
					Payload:   v,
				})
				test.ExpectSuccess(t, err, v)

				r, err := m.Do(hardware.Transaction{
					Direction: master.Reading,
					Address:   0x50,
				})
				test.ExpectSuccess(t, err, v)
				test.ExpectEquality(t, r, v)
			}
		})
	}
}

func TestPayloadMasking(t *testing.T) {
	m := newTestMachine(t)

	// only the lower twelve bits of the payload travel over the bus
	v, err := m.Do(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0xffff,
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x0fff)
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x0fff)
}

func TestWrongAddress(t *testing.T) {
	m := newTestMachine(t)
	m.Slaves[0].Poke(0x123)

	// no device at this address. the transaction fails with the sticky
	// acknowledgement error and the slave's memory is untouched
	_, err := m.Do(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x31,
		Payload:   0xabc,
	})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, hardware.NoAck))
	test.ExpectSuccess(t, m.Master.AckError())
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x123)

	// addresses in the reserved ranges can never be acknowledged
	_, err = m.Do(hardware.Transaction{
		Direction: master.Reading,
		Address:   0x7a,
	})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, hardware.NoAck))
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x123)

	// a failed transaction still ends cleanly. the next transaction works
	// and clears the acknowledgement error
	r, err := m.Do(hardware.Transaction{
		Direction: master.Reading,
		Address:   0x50,
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, 0x123)
	test.ExpectSuccess(t, !m.Master.AckError())
}

func TestBusy(t *testing.T) {
	m := newTestMachine(t)

	tr := hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0x700,
	}

	test.ExpectSuccess(t, m.Post(tr))
	test.ExpectSuccess(t, m.Master.Busy())

	// posting a second transaction while the first is in flight
	err := m.Post(tr)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, hardware.Busy))

	// busy remains asserted for every tick of the transaction
	for m.Master.Busy() {
		test.DemandSuccess(t, m.Step())
	}
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x700)
}

// transaction length is proportional to the number of bits on the wire.
// every transaction is three nine bit frames, with each bit taking two
// half-periods of the clock.
func TestDuration(t *testing.T) {
	duration := func(t *testing.T, m *hardware.Machine, tr hardware.Transaction) int {
		t.Helper()
		test.DemandSuccess(t, m.Post(tr))
		ct := 0
		for m.Master.Busy() {
			test.DemandSuccess(t, m.Step())
			ct++
		}
		return ct
	}

	durations := make(map[int]int)

	for _, div := range []int{2, 4, 8} {
		t.Run(fmt.Sprintf("divider=%d", div), func(t *testing.T) {
			m := newTestMachine(t)
			test.DemandSuccess(t, m.Env.Prefs.Divider.Set(div))

			w := duration(t, m, hardware.Transaction{
				Direction: master.Writing,
				Address:   0x50,
				Payload:   0x0f0,
			})
			test.ExpectApproximate(t, w, 27*2*div, 0.1)

			// reads and writes carry the same number of bits
			r := duration(t, m, hardware.Transaction{
				Direction: master.Reading,
				Address:   0x50,
			})
			test.ExpectEquality(t, r, w)

			durations[div] = w
		})
	}

	// doubling the divider doubles the transaction length
	test.ExpectApproximate(t, float64(durations[8])/float64(durations[2]), 4.0, 0.05)
}

// shapeTracer records the resolved line levels of every tick.
type shapeTracer struct {
	levels []bus.Levels
}

func (tr *shapeTracer) Tick(l bus.Levels) error {
	tr.levels = append(tr.levels, l)
	return nil
}

// count the number of data line transitions that happen while the clock line
// is high. the transitions are the start and stop conditions.
func (tr *shapeTracer) conditions() (starts int, stops int) {
	for i := 1; i < len(tr.levels); i++ {
		prev := tr.levels[i-1]
		cur := tr.levels[i]
		if prev.SCL && cur.SCL {
			if prev.SDA && !cur.SDA {
				starts++
			} else if !prev.SDA && cur.SDA {
				stops++
			}
		}
	}
	return starts, stops
}

func TestTransactionShape(t *testing.T) {
	m := newTestMachine(t)

	trc := &shapeTracer{}
	m.Bus.AddTracer(trc)

	// a few idle ticks so the tracer has seen the idle level of the lines
	// before the start condition
	for range 3 {
		test.DemandSuccess(t, m.Step())
	}

	_, err := m.Do(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0x3c3,
	})
	test.ExpectSuccess(t, err)

	// exactly one start condition and one stop condition. any other data
	// transition during a clock-high period would show up in these counts
	starts, stops := trc.conditions()
	test.ExpectEquality(t, starts, 1)
	test.ExpectEquality(t, stops, 1)

	// an unacknowledged transaction has the same shape
	trc.levels = trc.levels[:0]
	for range 3 {
		test.DemandSuccess(t, m.Step())
	}
	_, err = m.Do(hardware.Transaction{
		Direction: master.Reading,
		Address:   0x31,
	})
	test.ExpectFailure(t, err)

	starts, stops = trc.conditions()
	test.ExpectEquality(t, starts, 1)
	test.ExpectEquality(t, stops, 1)
}

func TestWriteValidPulse(t *testing.T) {
	m := newTestMachine(t)

	test.DemandSuccess(t, m.Post(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0x9e1,
	}))

	// the valid flag pulses for exactly one tick per completed write
	pulses := 0
	for m.Master.Busy() {
		test.DemandSuccess(t, m.Step())
		if m.Slaves[0].WriteValid {
			pulses++
		}
	}
	test.ExpectEquality(t, pulses, 1)
	test.ExpectEquality(t, m.Slaves[0].Written, 0x9e1)
}

func TestDesyncRecovery(t *testing.T) {
	m := newTestMachine(t)
	m.Slaves[0].Poke(0x456)

	// abandon a transaction part way through, without a stop condition
	test.DemandSuccess(t, m.Post(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0xabc,
	}))
	for range 40 {
		test.DemandSuccess(t, m.Step())
	}
	test.ExpectSuccess(t, m.Master.Busy())
	m.Master.Reset()
	test.ExpectSuccess(t, !m.Master.Busy())

	// the lines float back to their idle levels once released. the slave
	// sees the same shape as a stop condition and resynchronises
	for range 4 {
		test.DemandSuccess(t, m.Step())
	}

	// the next transaction proceeds as if nothing had happened
	v, err := m.Do(hardware.Transaction{
		Direction: master.Writing,
		Address:   0x50,
		Payload:   0x234,
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x234)
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x234)
}

// the clock line belongs to the master alone. the slave's only output is on
// the data line.
func TestSlaveNeverDrivesClock(t *testing.T) {
	m := newTestMachine(t)

	for _, tr := range []hardware.Transaction{
		{Direction: master.Writing, Address: 0x50, Payload: 0x0aa},
		{Direction: master.Reading, Address: 0x50},
	} {
		test.DemandSuccess(t, m.Post(tr))
		for m.Master.Busy() {
			test.DemandSuccess(t, m.Step())
			for _, h := range m.Bus.Holders(m.Bus.SCL) {
				test.ExpectEquality(t, h, "master")
			}
		}
	}
}

func TestMultipleSlaves(t *testing.T) {
	m := newTestMachine(t)

	_, err := m.AddSlave(0x23)
	test.ExpectSuccess(t, err)

	// duplicate and reserved addresses are rejected
	_, err = m.AddSlave(0x50)
	test.ExpectFailure(t, err)
	_, err = m.AddSlave(0x7a)
	test.ExpectFailure(t, err)

	_, err = m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x111})
	test.ExpectSuccess(t, err)
	_, err = m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x23, Payload: 0x222})
	test.ExpectSuccess(t, err)

	// each device only answers to its own address
	test.ExpectEquality(t, m.Slaves[0].Peek(), 0x111)
	test.ExpectEquality(t, m.Slaves[1].Peek(), 0x222)

	r, err := m.Do(hardware.Transaction{Direction: master.Reading, Address: 0x23})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, 0x222)
}

func TestDividerPreference(t *testing.T) {
	m := newTestMachine(t)

	test.ExpectSuccess(t, m.Env.Prefs.Divider.Set(6))
	test.ExpectEquality(t, m.Master.Divider(), 6)

	// dividers below the minimum are rejected and the previous value kept
	test.ExpectFailure(t, m.Env.Prefs.Divider.Set(1))
	test.ExpectEquality(t, m.Master.Divider(), 6)
}

func BenchmarkWriteTransaction(b *testing.B) {
	m, err := hardware.NewMachine(environment.MainEmulation, nil)
	if err != nil {
		b.Fatal(err.Error())
	}
	m.Env.Normalise()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err = m.Do(hardware.Transaction{
			Direction: master.Writing,
			Address:   0x50,
			Payload:   uint16(i) & 0x0fff,
		})
		if err != nil {
			b.Fatal(err.Error())
		}
	}
}
