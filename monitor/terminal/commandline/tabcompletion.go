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

package commandline

import (
	"strings"
)

// TabCompletion implements the terminal.TabCompletion interface, completing
// the command word at the start of the input line. Repeated completion of
// the same input cycles through all the candidates.
type TabCompletion struct {
	cmds *Commands

	// completion candidates from the most recent fresh input, and the last
	// candidate served
	matches []string
	match   int

	// the input that produced the current match list. a change of input
	// resets the cycle
	seed string
}

// NewTabCompletion is the preferred method of initialisation for the
// TabCompletion type.
func NewTabCompletion(cmds *Commands) *TabCompletion {
	return &TabCompletion{cmds: cmds}
}

// Complete the command word in the input string. Anything after the first
// word is left alone.
func (tc *TabCompletion) Complete(input string) string {
	trimmed := strings.TrimLeft(input, " ")
	if strings.ContainsAny(trimmed, " ") {
		// only the command word is completed
		return input
	}

	// a change of input begins a new completion cycle. the input is part of
	// the current cycle if it is the seed or the candidate most recently
	// served
	if tc.matches == nil || trimmed != tc.last() {
		tc.matches = tc.cmds.matches(trimmed)
		tc.match = -1
		tc.seed = trimmed
	}

	if len(tc.matches) == 0 {
		return input
	}

	tc.match++
	if tc.match >= len(tc.matches) {
		// cycled through every candidate. return to the original input
		tc.match = -1
		return tc.seed
	}

	return tc.matches[tc.match]
}

func (tc *TabCompletion) last() string {
	if tc.match < 0 || tc.match >= len(tc.matches) {
		return tc.seed
	}
	return tc.matches[tc.match]
}

// Reset the completion cycle.
func (tc *TabCompletion) Reset() {
	tc.matches = nil
	tc.match = 0
	tc.seed = ""
}
