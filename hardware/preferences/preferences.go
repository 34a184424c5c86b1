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

package preferences

import (
	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/prefs"
	"github.com/jetsetilly/gopherwire/resources"
)

// Default values for the hardware preferences.
const (
	DefaultDivider      = 4
	DefaultSlaveAddress = 0x50
)

// Preferences defines and collates all the preference values used by the bus
// hardware.
type Preferences struct {
	dsk *prefs.Disk

	// number of ticks in each half of the serial clock period. a divider of n
	// produces a full clock period of 2n ticks
	Divider prefs.Int

	// the seven bit address the slave device responds to
	SlaveAddress prefs.Int

	// initialise slave memory to an unknown state at power-on
	RandomState prefs.Bool
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the Preferences type.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}

	// validation of values arriving through the prefs system. the engines
	// apply the same rules but a bad value in the prefs file should never
	// reach them
	p.Divider.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 2 {
			return curated.Errorf("preferences: divider must be two or more (%d)", v.(int))
		}
		return nil
	})
	p.SlaveAddress.SetHookPre(func(v prefs.Value) error {
		if v.(int) < 0 || v.(int) > 0x7f {
			return curated.Errorf("preferences: slave address out of range (%#02x)", v.(int))
		}
		return nil
	})

	p.SetDefaults()

	// setup preferences and load from disk
	pth, err := resources.JoinPath(prefs.DefaultPrefsFile)
	if err != nil {
		return nil, err
	}
	p.dsk, err = prefs.NewDisk(pth)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.divider", &p.Divider)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.slaveaddress", &p.SlaveAddress)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("hardware.randstate", &p.RandomState)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Load(true)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all hardware preferences to the default values.
func (p *Preferences) SetDefaults() {
	p.Divider.Set(DefaultDivider)
	p.SlaveAddress.Set(DefaultSlaveAddress)
	p.RandomState.Set(false)
}

// Load current hardware preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save current hardware preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
