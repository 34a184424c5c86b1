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

// Package bus models the physical medium of the two-wire serial protocol:
// two open-drain lines, SCL for the clock and SDA for data.
//
// An open-drain line idles in the high state. A device never drives a line
// high, it can only pull the line low or release it. The resolved level of
// the line is therefore the wire-AND of every attached device: the line is
// high only when no device is pulling it low.
//
// Devices attach to the bus with the Join() function. The returned DriverID
// is the device's handle for the PullLow() and Release() functions of each
// Line.
//
// Devices never read the instantaneous line level. The Sample() function
// returns the level as resolved at the end of the previous tick, which
// devices feed through their own Trace instances. A Trace is a two-stage
// synchroniser: it remembers the current and previous sampled state of a
// line, meaning a device always acts on a value that is at least one tick
// old and edge detection is always in terms of two successive samples.
//
// The end of a tick is marked by the Commit() function. Commit() resolves
// both lines, forwards the result to any attached Tracer implementations and
// advances the bus coordinates.
package bus
