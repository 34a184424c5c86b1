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

package terminal

// Style is used to hint at what the terminal should do with a line of
// output. Terminals with no presentation capability can ignore it.
type Style int

// List of valid Style values.
const (
	// input that has been normalised by the monitor. terminals that echo
	// input as it is typed have no use for this
	StyleEcho Style = iota

	// the prompt asking for input
	StylePrompt

	// a response to a command
	StyleFeedback

	// information from the running machine: line levels, engine states
	StyleMachineInfo

	// help text
	StyleHelp

	// entries from the log
	StyleLog

	StyleError
)

// IsPrompt returns true if the style is one that decorates an input line
// rather than a line of its own.
func (sty Style) IsPrompt() bool {
	return sty == StylePrompt
}
