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

	"github.com/jetsetilly/gopherwire/hardware/bus/coords"
)

// Levels records the resolved level of both lines at a moment in time. True
// indicates the high state.
type Levels struct {
	Coords coords.Coords
	SCL    bool
	SDA    bool
}

func (lv Levels) String() string {
	g := func(v bool) rune {
		if v {
			return '▔'
		}
		return '▁'
	}
	return fmt.Sprintf("%c%c %v", g(lv.SCL), g(lv.SDA), lv.Coords)
}

// Tracer implementations are attached to the bus with AddTracer() and
// receive the resolved level of both lines at the end of every tick.
//
// Useful for capturing bus activity to a file, fingerprinting for regression
// or rendering the wire state in the monitor.
type Tracer interface {
	Tick(levels Levels) error
}
