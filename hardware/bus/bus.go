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
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware/bus/coords"
)

// the maximum number of devices that can join the bus. a consequence of the
// uint64 used to record pulls in the Line type.
const MaxDrivers = 64

// Bus is the shared medium joining the master and any number of slave
// devices. It owns the two Line instances and the bus coordinates.
//
// Exported fields are exported for the purposes of the monitor. Devices
// should not use the Line instances to read levels, the Sample() function is
// the only sanctioned read path.
type Bus struct {
	SCL Line
	SDA Line

	// traces of the resolved line levels. activity as a tracer of the bus
	// would see it
	TrcSCL Trace
	TrcSDA Trace

	// the labels of every device that has joined the bus, indexed by DriverID
	drivers []string

	// levels as resolved by the most recent Commit(). devices sample these,
	// never the instantaneous line level
	lastSCL bool
	lastSDA bool

	// attached tracers. forwarded the resolved levels on every Commit()
	tracers []Tracer

	coords coords.Coords
}

// NewBus is the preferred method of initialisation for the Bus type.
func NewBus() *Bus {
	b := &Bus{
		SCL:     NewLine("SCL"),
		SDA:     NewLine("SDA"),
		TrcSCL:  NewTrace("SCL"),
		TrcSDA:  NewTrace("SDA"),
		drivers: make([]string, 0, 2),
		lastSCL: true,
		lastSDA: true,
	}
	return b
}

func (b *Bus) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%v\n", b.coords))
	s.WriteString(fmt.Sprintf("SCL: %s\n", b.TrcSCL.String()))
	s.WriteString(fmt.Sprintf("SDA: %s", b.TrcSDA.String()))
	return s.String()
}

// Join attaches a device to the bus. The label is used for logging and for
// the monitor. The returned DriverID identifies the device to the PullLow()
// and Release() functions of both lines.
func (b *Bus) Join(label string) (DriverID, error) {
	if len(b.drivers) >= MaxDrivers {
		return 0, curated.Errorf("bus: too many devices (%d)", len(b.drivers))
	}
	id := DriverID(len(b.drivers))
	b.drivers = append(b.drivers, label)
	return id, nil
}

// Label returns the label the identified device joined the bus with.
func (b *Bus) Label(id DriverID) string {
	if int(id) < 0 || int(id) >= len(b.drivers) {
		return ""
	}
	return b.drivers[id]
}

// Holders returns the labels of every device currently pulling the line low.
func (b *Bus) Holders(l Line) []string {
	h := make([]string, 0, len(b.drivers))
	for id, label := range b.drivers {
		if l.HeldBy(DriverID(id)) {
			h = append(h, label)
		}
	}
	return h
}

// Sample returns the level of both lines as resolved at the end of the
// previous tick.
func (b *Bus) Sample() (scl, sda bool) {
	return b.lastSCL, b.lastSDA
}

// Commit resolves both lines and marks the end of the current tick. The
// resolved levels are those returned by Sample() during the next tick.
//
// Tracers attached to the bus receive the resolved levels. An error from a
// tracer interrupts the commit.
func (b *Bus) Commit() error {
	b.lastSCL = b.SCL.Level()
	b.lastSDA = b.SDA.Level()

	b.TrcSCL.Tick(b.lastSCL)
	b.TrcSDA.Tick(b.lastSDA)

	b.coords.Tick++

	lv := Levels{
		Coords: b.coords,
		SCL:    b.lastSCL,
		SDA:    b.lastSDA,
	}
	for _, t := range b.tracers {
		if err := t.Tick(lv); err != nil {
			return curated.Errorf("bus: %v", err)
		}
	}

	return nil
}

// EndTransaction marks the end of a bus transaction, advancing the
// transaction coordinate and zeroing the tick coordinate.
func (b *Bus) EndTransaction() {
	b.coords.Transaction++
	b.coords.Tick = 0
}

// GetCoords returns the current bus coordinates.
func (b *Bus) GetCoords() coords.Coords {
	return b.coords
}

// AddTracer attaches a Tracer implementation to the bus.
func (b *Bus) AddTracer(t Tracer) {
	b.tracers = append(b.tracers, t)
}

// Reset the bus to its power-on state. Attached devices and tracers remain
// attached.
func (b *Bus) Reset() {
	b.SCL.reset()
	b.SDA.reset()
	b.TrcSCL = NewTrace("SCL")
	b.TrcSDA = NewTrace("SDA")
	b.lastSCL = true
	b.lastSDA = true
	b.coords = coords.Coords{}
}
