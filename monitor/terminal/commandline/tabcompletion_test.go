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

package commandline_test

import (
	"testing"

	"github.com/jetsetilly/gopherwire/monitor/terminal/commandline"
	"github.com/jetsetilly/gopherwire/test"
)

func newTestCommands(t *testing.T) *commandline.Commands {
	t.Helper()
	cmds, err := commandline.NewCommands([]commandline.Command{
		{Name: "STEP"},
		{Name: "STOP"},
		{Name: "RUN"},
		{Name: "READ"},
		{Name: "QUIT"},
	})
	test.DemandSuccess(t, err)
	return cmds
}

func TestDuplicateCommands(t *testing.T) {
	_, err := commandline.NewCommands([]commandline.Command{
		{Name: "RUN"},
		{Name: "RUN"},
	})
	test.ExpectFailure(t, err)
}

func TestLookup(t *testing.T) {
	cmds := newTestCommands(t)

	c, ok := cmds.Lookup("run")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, c.Name, "RUN")

	_, ok = cmds.Lookup("WALK")
	test.ExpectSuccess(t, !ok)
}

func TestCompletionCycle(t *testing.T) {
	tc := commandline.NewTabCompletion(newTestCommands(t))

	// candidates are served in sorted order and the cycle returns to the
	// original input once exhausted
	test.ExpectEquality(t, tc.Complete("ST"), "STEP")
	test.ExpectEquality(t, tc.Complete("STEP"), "STOP")
	test.ExpectEquality(t, tc.Complete("STOP"), "ST")
	test.ExpectEquality(t, tc.Complete("ST"), "STEP")

	// editing the input starts a new cycle
	tc.Reset()
	test.ExpectEquality(t, tc.Complete("R"), "READ")
	test.ExpectEquality(t, tc.Complete("READ"), "RUN")

	// completion never touches anything after the first word
	tc.Reset()
	test.ExpectEquality(t, tc.Complete("READ 0x50"), "READ 0x50")

	// unmatchable input is returned unchanged
	tc.Reset()
	test.ExpectEquality(t, tc.Complete("X"), "X")
}
