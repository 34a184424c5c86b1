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
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/hardware/slave"
)

// the most slaves a script may attach to the bus.
const maxSlaves = 3

// Script describes a verification scenario.
type Script struct {
	// length of each clock half-period in ticks
	Divider int

	// the addresses of the devices attached to the bus
	Slaves []uint8

	// seed for the transaction generator. the same seed always produces the
	// same stream of exchanges
	Seed int64

	// the number of exchanges to drive. an exchange is either a write and
	// read-back pair or a single probe of an address with no device attached
	Exchanges int

	// expected digest of bus activity at the end of the run. not checked
	// when empty
	Digest string
}

func (scr Script) String() string {
	return fmt.Sprintf("divider=%d slaves=%d seed=%d exchanges=%d",
		scr.Divider, len(scr.Slaves), scr.Seed, scr.Exchanges)
}

// DefaultScript returns a Script with sensible values for every field.
func DefaultScript() Script {
	return Script{
		Divider:   4,
		Slaves:    []uint8{0x50},
		Seed:      0,
		Exchanges: 100,
	}
}

// the TOML face of the Script type.
type fileScript struct {
	Divider   int    `toml:"divider"`
	Slaves    []int  `toml:"slaves"`
	Seed      int64  `toml:"seed"`
	Exchanges int    `toml:"exchanges"`
	Digest    string `toml:"digest"`
}

// LoadScript reads a scenario script from a TOML file. Fields not present in
// the file keep the values given by DefaultScript().
func LoadScript(filename string) (Script, error) {
	scr := DefaultScript()

	var raw fileScript
	meta, err := toml.DecodeFile(filename, &raw)
	if err != nil {
		return Script{}, curated.Errorf("harness: %v", err)
	}

	if meta.IsDefined("divider") {
		scr.Divider = raw.Divider
	}

	if meta.IsDefined("slaves") {
		scr.Slaves = make([]uint8, 0, len(raw.Slaves))
		for _, a := range raw.Slaves {
			if a < 0 || a > 0x7f {
				return Script{}, curated.Errorf("harness: address out of range (%#02x)", a)
			}
			scr.Slaves = append(scr.Slaves, uint8(a))
		}
	}

	if meta.IsDefined("seed") {
		scr.Seed = raw.Seed
	}

	if meta.IsDefined("exchanges") {
		scr.Exchanges = raw.Exchanges
	}

	if meta.IsDefined("digest") {
		scr.Digest = raw.Digest
	}

	if err := scr.validate(); err != nil {
		return Script{}, err
	}

	return scr, nil
}

func (scr Script) validate() error {
	if scr.Divider < master.MinDivider {
		return curated.Errorf("harness: divider too small (%d)", scr.Divider)
	}

	if len(scr.Slaves) < 1 || len(scr.Slaves) > maxSlaves {
		return curated.Errorf("harness: between one and %d slaves required (%d given)", maxSlaves, len(scr.Slaves))
	}

	for i, a := range scr.Slaves {
		if slave.Reserved(a) {
			return curated.Errorf("harness: address is reserved (%#02x)", a)
		}
		for _, b := range scr.Slaves[:i] {
			if a == b {
				return curated.Errorf("harness: duplicate address (%#02x)", a)
			}
		}
	}

	if scr.Exchanges < 1 {
		return curated.Errorf("harness: at least one exchange required (%d given)", scr.Exchanges)
	}

	return nil
}
