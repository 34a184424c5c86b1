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

// Package monitor implements an interactive tool for examining the bus
// emulation. Features include:
//
//   - tick stepping through transactions
//   - display of recent line activity
//   - memory peek and poke of attached devices
//   - posting of transactions for the bus to work on
//   - inspection of master and slave engine state
//
// Interaction with the monitor is through a terminal. The Terminal interface
// is defined in the terminal sub-package. The colorterm and plainterm
// packages provide good reference implementations.
//
// Initialisation of the monitor is done with the NewMonitor() function
//
//	mon, _ := monitor.NewMonitor(machine, term)
//
// Once initialised, the monitor is started with the Run() function. Run()
// does not return until the user quits the monitor or the terminal input is
// exhausted.
package monitor
