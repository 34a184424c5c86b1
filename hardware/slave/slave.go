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

// Package slave implements an addressable device on the bus. Each slave
// holds a single twelve bit memory cell which the master can write to and
// read from.
//
// The slave never drives the clock line. It watches the lines through its
// own synchronisers and responds to the clock edges and to the start and
// stop conditions that it sees there. A start condition puts the slave into
// the address state whatever it was doing before; a stop condition returns
// it to idle. A slave that has lost its place in a transaction therefore
// resynchronises at the next transaction boundary.
package slave

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/logger"
)

// SlaveState records the stage of the transaction the slave believes it is
// taking part in.
type SlaveState int

// List of valid SlaveState values.
const (
	SlaveIdle SlaveState = iota
	SlaveAddress
	SlaveAckAddress
	SlaveData
	SlaveAckData
)

// Direction indicates the direction of data flow for the transaction in
// progress, from the point of view of the master.
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

// Reserved returns true if the seven bit address is in one of the two
// reserved ranges at the extremes of the address space. Reserved addresses
// cannot be assigned to a device.
func Reserved(address uint8) bool {
	return address&0x78 == 0x00 || address&0x78 == 0x78
}

// Slave is an addressable device on the bus.
//
// Exported fields are exported for the purposes of the monitor. They should
// not be written to from outside the package.
type Slave struct {
	env *environment.Environment
	bus *bus.Bus
	id  bus.DriverID

	// the seven bit address the device answers to
	Address uint8

	// the state of the lines as seen through the synchronisers
	SCL bus.Trace
	SDA bus.Trace

	State SlaveState

	// direction of the transaction in progress. valid from the ack-address
	// state onwards
	Dir Direction

	// whether the address byte matched this device
	Matched bool

	// whether the device is currently holding the data line low in
	// acknowledgement
	Ack bool

	// the shift register. data is sent and received one bit at a time,
	// most-significant bit first
	Bits   uint8
	BitsCt int

	// which of the two data bytes is in flight
	ByteCt int

	// the twelve bit memory cell
	Memory uint16

	// Written is the value of the memory cell at the end of the most recent
	// completed write. WriteValid is true for the one tick following the
	// commit of the second byte
	Written    uint16
	WriteValid bool
}

// NewSlave is the preferred method of initialisation for the Slave type.
//
// Returns an error if the address is not a seven bit value or is in one of
// the reserved ranges.
func NewSlave(env *environment.Environment, b *bus.Bus, address uint8) (*Slave, error) {
	if address > 0x7f {
		return nil, curated.Errorf("slave: address out of range (%#02x)", address)
	}
	if Reserved(address) {
		return nil, curated.Errorf("slave: address is reserved (%#02x)", address)
	}

	id, err := b.Join(fmt.Sprintf("slave %#02x", address))
	if err != nil {
		return nil, curated.Errorf("slave: %v", err)
	}

	s := &Slave{
		env:     env,
		bus:     b,
		id:      id,
		Address: address,
		SCL:     bus.NewTrace("SCL"),
		SDA:     bus.NewTrace("SDA"),
		State:   SlaveIdle,
	}

	if env.Prefs.RandomState.Get().(bool) {
		s.Memory = uint16(env.Random.NoReplay(0x1000))
	}

	return s, nil
}

func (s *Slave) String() string {
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("slave %#02x: ", s.Address))

	switch s.State {
	case SlaveIdle:
		b.WriteString("idle")
	case SlaveAddress:
		b.WriteString("addressing")
	case SlaveAckAddress:
		if s.Matched {
			b.WriteString("acknowledging address")
		} else {
			b.WriteString("ignoring address")
		}
	case SlaveData, SlaveAckData:
		b.WriteString(fmt.Sprintf("%v byte %d", s.Dir, s.ByteCt))
	}

	b.WriteString(fmt.Sprintf(" [%#03x]", s.Memory))

	return b.String()
}

// Poke a value directly into the memory cell, bypassing the bus.
func (s *Slave) Poke(data uint16) {
	s.Memory = data & 0x0fff
}

// Peek the value of the memory cell without going through the bus.
func (s *Slave) Peek() uint16 {
	return s.Memory
}

// Reset the slave to its power-on state. The memory cell is not cleared.
func (s *Slave) Reset() {
	s.bus.SDA.Release(s.id)
	s.SCL = bus.NewTrace("SCL")
	s.SDA = bus.NewTrace("SDA")
	s.State = SlaveIdle
	s.Matched = false
	s.Ack = false
	s.resetBits()
	s.ByteCt = 0
	s.WriteValid = false
}

// return the next bit in the current byte, most-significant bit first.
func (s *Slave) sendBit() bool {
	v := (s.Bits >> (7 - s.BitsCt)) & 0x01
	s.BitsCt++
	return v == 0x01
}

// recvBit returns true when the bits field is full.
func (s *Slave) recvBit(v bool) bool {
	if s.BitsCt >= 8 {
		s.resetBits()
	}
	if v {
		s.Bits |= 0x01 << (7 - s.BitsCt)
	}
	s.BitsCt++
	return s.BitsCt == 8
}

func (s *Slave) resetBits() {
	s.Bits = 0
	s.BitsCt = 0
}

// present a bit on the data line. a high bit releases the line, a low bit
// pulls it low.
func (s *Slave) driveBit(v bool) {
	if v {
		s.bus.SDA.Release(s.id)
	} else {
		s.bus.SDA.PullLow(s.id)
	}
}

// Step advances the slave by one tick.
func (s *Slave) Step() {
	// the valid pulse lasts for exactly one tick
	s.WriteValid = false

	// update synchronisers with the levels resolved at the end of the
	// previous tick
	scl, sda := s.bus.Sample()
	s.SCL.Tick(scl)
	s.SDA.Tick(sda)

	// a start condition puts the slave into the address state from any
	// state. this check comes before everything else
	if s.SCL.Hi() && s.SDA.Falling() {
		logger.Logf(s.env, "slave", "%#02x: start condition", s.Address)
		s.bus.SDA.Release(s.id)
		s.resetBits()
		s.ByteCt = 0
		s.Ack = false
		s.Matched = false
		s.State = SlaveAddress
		return
	}

	// a stop condition returns the slave to idle from any state. a slave
	// that has lost its place resynchronises here
	if s.State != SlaveIdle && s.SCL.Hi() && s.SDA.Rising() {
		logger.Logf(s.env, "slave", "%#02x: stop condition", s.Address)
		s.bus.SDA.Release(s.id)
		s.State = SlaveIdle
		return
	}

	if s.SCL.Rising() {
		s.clockRise()
	} else if s.SCL.Falling() {
		s.clockFall()
	}
}

// actions taken when the synchronised clock rises. the clock-high half is
// for sampling.
func (s *Slave) clockRise() {
	switch s.State {
	case SlaveAddress:
		if s.recvBit(s.SDA.Hi()) {
			s.Matched = (s.Bits >> 1) == s.Address
			if s.Bits&0x01 == 0x01 {
				s.Dir = Reading
			} else {
				s.Dir = Writing
			}
			if s.Matched {
				logger.Logf(s.env, "slave", "%#02x: addressed for %v", s.Address, s.Dir)
			}
			s.State = SlaveAckAddress
		}

	case SlaveData:
		if s.Dir == Writing {
			if s.recvBit(s.SDA.Hi()) {
				s.State = SlaveAckData
			}
		}

	case SlaveAckData:
		if s.Dir == Writing && s.Ack {
			// the master samples the acknowledgement on this edge. commit
			// the received byte at the same time
			if s.ByteCt == 0 {
				s.Memory = (s.Memory & 0x00f) | (uint16(s.Bits) << 4)
			} else {
				s.Memory = (s.Memory & 0xff0) | uint16(s.Bits>>4)
				s.Written = s.Memory
				s.WriteValid = true
				logger.Logf(s.env, "slave", "%#02x: written %#03x", s.Address, s.Memory)
			}
		}
	}
}

// actions taken when the synchronised clock falls. the clock-low half is for
// setup: the slave only changes the data line here.
func (s *Slave) clockFall() {
	switch s.State {
	case SlaveAckAddress:
		if !s.Ack {
			// first clock-low half of the acknowledgement period
			if s.Matched {
				s.bus.SDA.PullLow(s.id)
			}
			s.Ack = true
		} else {
			// acknowledgement period over
			s.bus.SDA.Release(s.id)
			s.Ack = false
			if !s.Matched {
				s.State = SlaveIdle
				return
			}
			s.resetBits()
			if s.Dir == Reading {
				// first byte of a read is bits 11 to 4 of the memory cell
				s.Bits = uint8(s.Memory >> 4)
				s.driveBit(s.sendBit())
			}
			s.State = SlaveData
		}

	case SlaveData:
		if s.Dir == Reading {
			if s.BitsCt >= 8 {
				// all eight bits presented. release the data line for the
				// master's acknowledgement
				s.bus.SDA.Release(s.id)
				s.Ack = true
				s.State = SlaveAckData
			} else {
				s.driveBit(s.sendBit())
			}
		}

	case SlaveAckData:
		if s.Dir == Reading {
			// the master drives the line during a read acknowledgement. the
			// slave takes no notice of the answer: it carries on to the next
			// byte or to idle regardless
			s.Ack = false
			s.resetBits()
			s.ByteCt++
			if s.ByteCt < 2 {
				s.Bits = uint8(s.Memory&0x00f) << 4
				s.driveBit(s.sendBit())
				s.State = SlaveData
			} else {
				s.State = SlaveIdle
			}
		} else {
			if !s.Ack {
				// first clock-low half of the acknowledgement period
				s.bus.SDA.PullLow(s.id)
				s.Ack = true
			} else {
				s.bus.SDA.Release(s.id)
				s.Ack = false
				s.resetBits()
				s.ByteCt++
				if s.ByteCt < 2 {
					s.State = SlaveData
				} else {
					s.State = SlaveIdle
				}
			}
		}
	}
}
