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

package hardware

import (
	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/hardware/bus/coords"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/hardware/preferences"
	"github.com/jetsetilly/gopherwire/hardware/slave"
	"github.com/jetsetilly/gopherwire/prefs"
)

// Machine is the main container for the emulated components: the bus, the
// master and every attached slave.
type Machine struct {
	Env *environment.Environment

	Bus    *bus.Bus
	Master *master.Master
	Slaves []*slave.Slave
}

// NewMachine is the preferred method of initialisation for the Machine type.
//
// A machine is created with a single slave attached, at the address given by
// the slave address preference. Further devices can be attached with the
// AddSlave() function.
//
// The prefs argument can be nil, in which case a new Preferences instance is
// created.
func NewMachine(label environment.Label, prf *preferences.Preferences) (*Machine, error) {
	var err error

	m := &Machine{
		Bus: bus.NewBus(),
	}

	m.Env, err = environment.NewEnvironment(label, m.Bus, prf)
	if err != nil {
		return nil, curated.Errorf("machine: %v", err)
	}

	m.Master, err = master.NewMaster(m.Env, m.Bus)
	if err != nil {
		return nil, curated.Errorf("machine: %v", err)
	}

	// changes to the divider preference take effect immediately
	m.Env.Prefs.Divider.SetHookPost(func(v prefs.Value) error {
		return m.Master.SetDivider(v.(int))
	})

	_, err = m.AddSlave(uint8(m.Env.Prefs.SlaveAddress.Get().(int)))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// AddSlave attaches another device to the bus. Addresses must be unique
// across the machine.
func (m *Machine) AddSlave(address uint8) (*slave.Slave, error) {
	for _, s := range m.Slaves {
		if s.Address == address {
			return nil, curated.Errorf("machine: address already attached (%#02x)", address)
		}
	}

	s, err := slave.NewSlave(m.Env, m.Bus, address)
	if err != nil {
		return nil, curated.Errorf("machine: %v", err)
	}
	m.Slaves = append(m.Slaves, s)

	return s, nil
}

// Step advances the machine by one tick. Components advance in a fixed
// order: the master first, then every slave in the order they were attached,
// and finally the bus commits the tick, resolving the line levels and
// forwarding them to any attached tracers.
//
// A consequence of this order is that every device samples the line levels
// resolved at the end of the previous tick. No device sees another device's
// activity from the current tick.
func (m *Machine) Step() error {
	m.Master.Step()
	for _, s := range m.Slaves {
		s.Step()
	}

	if err := m.Bus.Commit(); err != nil {
		return curated.Errorf("machine: %v", err)
	}

	return nil
}

// Coords returns the current machine coordinates: the count of completed
// transactions and the tick count within the current transaction.
func (m *Machine) Coords() coords.Coords {
	return m.Bus.GetCoords()
}

// Reset the machine to its power-on state. Slave memory cells are not
// cleared.
func (m *Machine) Reset() {
	m.Master.Reset()
	for _, s := range m.Slaves {
		s.Reset()
	}
	m.Bus.Reset()
}
