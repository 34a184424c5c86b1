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

// Package commandline holds the table of commands understood by the monitor
// and provides tab completion over that table.
package commandline

import (
	"sort"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
)

// Command is a single entry in the command table.
type Command struct {
	Name string

	// Template shows the arguments the command accepts. Used by the HELP
	// command
	Template string

	Help string
}

// Commands is the table of commands understood by the monitor.
type Commands struct {
	list []Command
}

// NewCommands is the preferred method of initialisation for the Commands
// type. Command names must be unique.
func NewCommands(list []Command) (*Commands, error) {
	cmds := &Commands{
		list: make([]Command, len(list)),
	}
	copy(cmds.list, list)

	sort.Slice(cmds.list, func(i, j int) bool {
		return cmds.list[i].Name < cmds.list[j].Name
	})

	for i := 1; i < len(cmds.list); i++ {
		if cmds.list[i].Name == cmds.list[i-1].Name {
			return nil, curated.Errorf("commandline: duplicate command (%s)", cmds.list[i].Name)
		}
	}

	return cmds, nil
}

func (cmds *Commands) String() string {
	s := strings.Builder{}
	for i, c := range cmds.list {
		if i > 0 {
			s.WriteString(" ")
		}
		s.WriteString(c.Name)
	}
	return s.String()
}

// Lookup returns the command with the given name. Lookup is case
// insensitive.
func (cmds *Commands) Lookup(name string) (Command, bool) {
	name = strings.ToUpper(name)
	for _, c := range cmds.list {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// ForEach calls f for every command in the table, in sorted order.
func (cmds *Commands) ForEach(f func(Command)) {
	for _, c := range cmds.list {
		f(c)
	}
}

// matches returns the commands whose names begin with the given prefix.
func (cmds *Commands) matches(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	var m []string
	for _, c := range cmds.list {
		if strings.HasPrefix(c.Name, prefix) {
			m = append(m, c.Name)
		}
	}
	return m
}
