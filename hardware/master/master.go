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

// Package master implements the bus master: the only device that drives the
// clock line and the device that originates every transaction.
//
// The master is a bit-level state machine. A transaction is requested with
// the Begin() function and the machine then advances one tick at a time with
// the Step() function. Progress is observed through the Busy(), AckError()
// and ReadData() functions.
//
// Like the slave, the master acts on the state of the lines as seen through
// its own two-stage synchronisers and not on the instantaneous line levels.
// A consequence of this is that the clock divider must be two or more,
// leaving room in each half of the clock period for a data transition to
// settle before the next clock edge.
package master

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/logger"
)

// MasterState records the stage a transaction has reached.
type MasterState int

// List of valid MasterState values.
const (
	MasterIdle MasterState = iota
	MasterStart
	MasterAddress
	MasterAckAddress
	MasterWriteData
	MasterAckWrite
	MasterReadData
	MasterAckRead
	MasterStop
)

// Direction indicates the direction of data flow for a transaction.
type Direction int

// List of valid Direction values.
const (
	Writing Direction = iota
	Reading
)

func (d Direction) String() string {
	if d == Reading {
		return "reading"
	}
	return "writing"
}

// MinDivider is the smallest allowed clock divider. Anything less leaves no
// room for a data transition to settle inside a clock half-period.
const MinDivider = 2

// the bit in the address byte that indicates the direction of the
// transaction. set for a read.
const readBit = 0x01

// Master is the originating device on the bus. It implements the protocol
// engine for the master role.
//
// Exported fields are exported for the purposes of the monitor. They should
// not be written to from outside the package.
type Master struct {
	env *environment.Environment
	bus *bus.Bus
	id  bus.DriverID

	// the state of the lines as seen through the synchronisers
	SCL bus.Trace
	SDA bus.Trace

	// the stage the current transaction has reached
	State MasterState

	// details of the current transaction
	Dir     Direction
	Address uint8
	data    uint16

	// sticky acknowledgement failure. valid once Busy() returns false.
	// cleared by the next Begin()
	AckErr bool

	// data assembled by a read transaction. valid once Busy() returns false
	readData uint16

	// the shift register. data is sent and received one bit at a time,
	// most-significant bit first
	Bits   uint8
	BitsCt int

	// which of the two data bytes is in flight
	ByteCt int

	// clock generation. the clock line is pulled low for divider ticks and
	// released for divider ticks, for as long as a transaction is active
	divider int
	phase   int
	clockHi bool

	// most recent acknowledgement sample. true means no acknowledgement
	nack bool

	// a transaction has been requested but not yet taken up by Step()
	trigger bool
}

// NewMaster is the preferred method of initialisation for the Master type.
func NewMaster(env *environment.Environment, b *bus.Bus) (*Master, error) {
	id, err := b.Join("master")
	if err != nil {
		return nil, curated.Errorf("master: %v", err)
	}

	m := &Master{
		env:     env,
		bus:     b,
		id:      id,
		SCL:     bus.NewTrace("SCL"),
		SDA:     bus.NewTrace("SDA"),
		State:   MasterIdle,
		clockHi: true,
	}

	if err := m.SetDivider(env.Prefs.Divider.Get().(int)); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Master) String() string {
	s := strings.Builder{}
	s.WriteString("master: ")

	switch m.State {
	case MasterIdle:
		s.WriteString("idle")
	case MasterStart:
		s.WriteString("starting")
	case MasterAddress, MasterAckAddress:
		s.WriteString(fmt.Sprintf("%v address %#02x", m.Dir, m.Address))
	case MasterWriteData, MasterAckWrite:
		s.WriteString(fmt.Sprintf("writing byte %d", m.ByteCt))
	case MasterReadData, MasterAckRead:
		s.WriteString(fmt.Sprintf("reading byte %d", m.ByteCt))
	case MasterStop:
		s.WriteString("stopping")
	}

	if m.AckErr {
		s.WriteString(" [NACK]")
	}

	return s.String()
}

// SetDivider changes the length of each half of the clock period, measured
// in ticks. Values less than MinDivider are rejected.
//
// The divider should not be changed while a transaction is in flight.
func (m *Master) SetDivider(divider int) error {
	if divider < MinDivider {
		return curated.Errorf("master: divider too small (%d)", divider)
	}
	m.divider = divider
	return nil
}

// Divider returns the current clock divider.
func (m *Master) Divider() int {
	return m.divider
}

// Busy returns true while a transaction is in flight. The AckError() and
// ReadData() results are only valid when Busy() returns false.
func (m *Master) Busy() bool {
	return m.State != MasterIdle || m.trigger
}

// AckError returns true if the most recent transaction ended without an
// acknowledgement from the addressed device.
func (m *Master) AckError() bool {
	return m.AckErr
}

// ReadData returns the twelve bit value assembled by the most recent read
// transaction. Not meaningful if AckError() returns true.
func (m *Master) ReadData() uint16 {
	return m.readData
}

// Begin requests a transaction. The transaction proper starts on the next
// call to Step() and runs until Busy() returns false.
//
// The data argument is ignored for read transactions. The address is a seven
// bit value; the top bit is discarded.
//
// Calling Begin() while Busy() returns true is a caller error and the
// outcome is undefined.
func (m *Master) Begin(dir Direction, address uint8, data uint16) {
	m.Dir = dir
	m.Address = address & 0x7f
	m.data = data & 0x0fff
	m.AckErr = false
	m.readData = 0
	m.trigger = true
}

// Reset the master to its power-on state. Any transaction in flight is
// abandoned without a stop condition.
func (m *Master) Reset() {
	m.bus.SCL.Release(m.id)
	m.bus.SDA.Release(m.id)
	m.SCL = bus.NewTrace("SCL")
	m.SDA = bus.NewTrace("SDA")
	m.State = MasterIdle
	m.AckErr = false
	m.readData = 0
	m.trigger = false
	m.clockHi = true
	m.phase = 0
	m.resetBits()
	m.ByteCt = 0
}

// return the next bit in the current byte, most-significant bit first.
func (m *Master) sendBit() bool {
	v := (m.Bits >> (7 - m.BitsCt)) & 0x01
	m.BitsCt++
	return v == 0x01
}

// recvBit returns true when the bits field is full.
func (m *Master) recvBit(v bool) bool {
	if m.BitsCt >= 8 {
		m.resetBits()
	}
	if v {
		m.Bits |= 0x01 << (7 - m.BitsCt)
	}
	m.BitsCt++
	return m.BitsCt == 8
}

func (m *Master) resetBits() {
	m.Bits = 0
	m.BitsCt = 0
}

// present a bit on the data line. a high bit releases the line, a low bit
// pulls it low.
func (m *Master) driveBit(v bool) {
	if v {
		m.bus.SDA.Release(m.id)
	} else {
		m.bus.SDA.PullLow(m.id)
	}
}

// begin the stop condition: data line low during the current clock-low half,
// released once the clock has risen again.
func (m *Master) beginStop() {
	m.bus.SDA.PullLow(m.id)
	m.State = MasterStop
}

// Step advances the master by one tick.
func (m *Master) Step() {
	// update synchronisers with the levels resolved at the end of the
	// previous tick
	scl, sda := m.bus.Sample()
	m.SCL.Tick(scl)
	m.SDA.Tick(sda)

	if m.State == MasterIdle {
		if !m.trigger {
			return
		}

		// take up the requested transaction. pulling the data line low while
		// the clock line idles high is the start condition
		m.trigger = false
		m.bus.SDA.PullLow(m.id)
		m.phase = 0
		m.clockHi = true
		m.ByteCt = 0
		m.resetBits()
		m.State = MasterStart
		logger.Logf(m.env, "master", "%v %#02x: started", m.Dir, m.Address)
		return
	}

	// clock generation. the line follows the internal clock for as long as
	// the transaction is active
	m.phase++
	if m.phase >= m.divider {
		m.phase = 0
		m.clockHi = !m.clockHi
		if m.clockHi {
			m.bus.SCL.Release(m.id)
		} else {
			m.bus.SCL.PullLow(m.id)
		}
	}

	// everything below responds to clock edges as seen through the
	// synchroniser, not to the internal clock. the slave sees the same edges
	// one tick after they appear on the wire, which keeps the two engines in
	// lockstep
	if m.SCL.Rising() {
		m.clockRise()
	} else if m.SCL.Falling() {
		m.clockFall()
	}
}

// actions taken when the synchronised clock rises. the clock-high half is
// for sampling: levels must not change while the clock is high unless
// signalling a start or stop condition.
func (m *Master) clockRise() {
	switch m.State {
	case MasterAckAddress, MasterAckWrite:
		// a released data line during the acknowledgement period means no
		// device answered
		m.nack = m.SDA.Hi()

	case MasterReadData:
		if m.recvBit(m.SDA.Hi()) {
			if m.ByteCt == 0 {
				m.readData = uint16(m.Bits) << 4
			} else {
				m.readData |= uint16(m.Bits) >> 4
				logger.Logf(m.env, "master", "read %#03x", m.readData)
			}
		}

	case MasterStop:
		// the clock has risen with the data line still held low. releasing
		// the data line now produces the stop condition
		m.bus.SDA.Release(m.id)
		m.State = MasterIdle
		m.bus.EndTransaction()
		logger.Log(m.env, "master", "stopped")
	}
}

// actions taken when the synchronised clock falls. the clock-low half is for
// setup: data line changes are only made here.
func (m *Master) clockFall() {
	switch m.State {
	case MasterStart:
		// first clock period of the transaction. present the address byte:
		// seven address bits then the direction bit
		m.Bits = m.Address << 1
		if m.Dir == Reading {
			m.Bits |= readBit
		}
		m.BitsCt = 0
		m.driveBit(m.sendBit())
		m.State = MasterAddress

	case MasterAddress:
		if m.BitsCt >= 8 {
			// all eight bits presented. release the data line and let the
			// addressed device answer
			m.bus.SDA.Release(m.id)
			m.State = MasterAckAddress
		} else {
			m.driveBit(m.sendBit())
		}

	case MasterAckAddress:
		if m.nack {
			logger.Logf(m.env, "master", "no acknowledgement from %#02x", m.Address)
			m.AckErr = true
			m.beginStop()
			return
		}
		if m.Dir == Writing {
			m.loadWriteByte()
			m.driveBit(m.sendBit())
			m.State = MasterWriteData
		} else {
			m.resetBits()
			m.State = MasterReadData
		}

	case MasterWriteData:
		if m.BitsCt >= 8 {
			m.bus.SDA.Release(m.id)
			m.State = MasterAckWrite
		} else {
			m.driveBit(m.sendBit())
		}

	case MasterAckWrite:
		if m.nack {
			logger.Logf(m.env, "master", "byte %d not acknowledged", m.ByteCt)
			m.AckErr = true
			m.beginStop()
			return
		}
		if m.ByteCt == 0 {
			m.ByteCt = 1
			m.loadWriteByte()
			m.driveBit(m.sendBit())
			m.State = MasterWriteData
		} else {
			m.beginStop()
		}

	case MasterReadData:
		if m.BitsCt >= 8 {
			if m.ByteCt == 0 {
				// acknowledge the first byte: data line low for one clock
				// period
				m.bus.SDA.PullLow(m.id)
			} else {
				// the second byte is answered with no-acknowledgement,
				// telling the device that no more data is wanted
				m.bus.SDA.Release(m.id)
			}
			m.State = MasterAckRead
		}
		// received bits accumulate on the rising edge; nothing to set up
		// otherwise

	case MasterAckRead:
		if m.ByteCt == 0 {
			m.bus.SDA.Release(m.id)
			m.ByteCt = 1
			m.resetBits()
			m.State = MasterReadData
		} else {
			m.beginStop()
		}
	}
}

// load the shift register with the next byte of the write payload. the
// twelve bit value is framed as bits 11 to 4 followed by bits 3 to 0 in the
// upper nibble of the second byte.
func (m *Master) loadWriteByte() {
	if m.ByteCt == 0 {
		m.Bits = uint8(m.data >> 4)
	} else {
		m.Bits = uint8(m.data&0x0f) << 4
	}
	m.BitsCt = 0
}
