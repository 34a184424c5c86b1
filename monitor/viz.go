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

package monitor

import (
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/monitor/terminal"
	"github.com/jetsetilly/gopherwire/resources/unique"
)

// memoryViz writes a graphviz visualisation of the machine structure to a
// dot file in the working directory. Useful when chasing down pointer
// problems in the emulated hardware.
//
//	dot -Tsvg machine_20260821_112533.dot -o machine.svg
func (mon *Monitor) memoryViz() error {
	fn := unique.Filename("machine", "") + ".dot"

	f, err := os.Create(fn)
	if err != nil {
		return curated.Errorf("monitor: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			mon.printLine(terminal.StyleError, "%s", err)
		}
	}()

	memviz.Map(f, mon.machine)

	mon.printLine(terminal.StyleFeedback, "machine visualisation written to %s", fn)

	return nil
}
