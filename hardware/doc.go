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

// Package hardware assembles the bus, the master and any number of slaves
// into a machine that can be stepped, run and queried as a unit.
//
// The Machine type is the root of the assembly and the type most other
// packages in this project deal with. The order in which components advance
// within a single tick is fixed and is documented with the Step() function.
//
// Callers that do not want to drive the machine tick by tick can use the
// Do() function, which runs a single transaction from start condition to
// stop condition and returns the outcome.
package hardware
