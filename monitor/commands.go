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
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/hardware/slave"
	"github.com/jetsetilly/gopherwire/logger"
	"github.com/jetsetilly/gopherwire/monitor/terminal"
	"github.com/jetsetilly/gopherwire/monitor/terminal/commandline"
)

// monitor keywords.
const (
	cmdReset = "RESET"
	cmdQuit  = "QUIT"

	cmdRun   = "RUN"
	cmdStep  = "STEP"
	cmdRead  = "READ"
	cmdWrite = "WRITE"

	cmdLines  = "LINES"
	cmdTrace  = "TRACE"
	cmdMaster = "MASTER"
	cmdSlave  = "SLAVE"
	cmdAttach = "ATTACH"
	cmdPeek   = "PEEK"
	cmdPoke   = "POKE"

	// meta
	cmdHelp  = "HELP"
	cmdLog   = "LOG"
	cmdPrefs = "PREFS"
	cmdViz   = "VIZ"
)

var commandTable = []commandline.Command{
	{Name: cmdReset, Help: "Reset the machine to its initial state"},
	{Name: cmdQuit, Help: "Exits the monitor"},

	{Name: cmdRun, Help: "Run the machine until the transaction in flight completes"},
	{Name: cmdStep, Template: "(%<ticks>N)", Help: "Step the machine forward one or more ticks"},
	{Name: cmdRead, Template: "%<address>N (POST)", Help: "Read a device over the bus"},
	{Name: cmdWrite, Template: "%<address>N %<value>N (POST)", Help: "Write a value to a device over the bus"},

	{Name: cmdLines, Help: "Display recent activity of both bus lines"},
	{Name: cmdTrace, Template: "(ON|OFF)", Help: "Control the display of line activity whenever the machine halts"},
	{Name: cmdMaster, Help: "Display the current state of the master engine"},
	{Name: cmdSlave, Template: "(%<address>N)", Help: "Display the current state of attached devices"},
	{Name: cmdAttach, Template: "%<address>N", Help: "Attach a new device to the bus"},
	{Name: cmdPeek, Template: "%<address>N", Help: "Inspect a device memory cell, bypassing the bus"},
	{Name: cmdPoke, Template: "%<address>N %<value>N", Help: "Change a device memory cell, bypassing the bus"},

	{Name: cmdHelp, Template: "(%<command>S)", Help: "Lists commands and provides help for individual commands"},
	{Name: cmdLog, Template: "(LAST|RECENT|CLEAR)", Help: "Display the application log"},
	{Name: cmdPrefs, Template: "(LOAD|SAVE|DIVIDER %<ticks>N|RANDSTATE [ON|OFF])", Help: "Display or change hardware preferences"},
	{Name: cmdViz, Help: "Write a visualisation of machine memory to a dot file"},
}

// parseCommand scans the tokenised input for a valid command and acts upon
// it. the empty string is the same as the STEP command.
func (mon *Monitor) parseCommand(input string) error {
	tokens := strings.Fields(input)
	if len(tokens) == 0 {
		tokens = []string{cmdStep}
	}

	cmd, ok := mon.commands.Lookup(tokens[0])
	if !ok {
		return curated.Errorf("monitor: unrecognised command (%s)", tokens[0])
	}
	args := tokens[1:]

	switch cmd.Name {
	case cmdReset:
		mon.machine.Reset()
		mon.pending = false
		mon.printLine(terminal.StyleFeedback, "machine reset")

	case cmdQuit:
		mon.running = false

	case cmdRun:
		if !mon.machine.Master.Busy() {
			mon.printLine(terminal.StyleFeedback, "bus is idle (nothing to run)")
			return nil
		}
		for mon.machine.Master.Busy() {
			if err := mon.machine.Step(); err != nil {
				return err
			}
		}
		mon.reportResult()

	case cmdStep:
		n := 1
		if len(args) >= 1 {
			var err error
			n, err = strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return curated.Errorf("monitor: not a valid tick count (%s)", args[0])
			}
		}
		for i := 0; i < n; i++ {
			if err := mon.machine.Step(); err != nil {
				return err
			}
		}
		if mon.pending && !mon.machine.Master.Busy() {
			mon.reportResult()
		} else if mon.showLines {
			mon.displayLines()
		}

	case cmdRead:
		if len(args) < 1 {
			return curated.Errorf("monitor: %s requires an address", cmdRead)
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		tr := hardware.Transaction{Direction: master.Reading, Address: addr}
		if len(args) >= 2 && strings.ToUpper(args[1]) == "POST" {
			return mon.postTransaction(tr)
		}
		return mon.doTransaction(tr)

	case cmdWrite:
		if len(args) < 2 {
			return curated.Errorf("monitor: %s requires an address and a value", cmdWrite)
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		val, err := parseValue(args[1])
		if err != nil {
			return err
		}
		tr := hardware.Transaction{Direction: master.Writing, Address: addr, Payload: val}
		if len(args) >= 3 && strings.ToUpper(args[2]) == "POST" {
			return mon.postTransaction(tr)
		}
		return mon.doTransaction(tr)

	case cmdLines:
		mon.displayLines()

	case cmdTrace:
		if len(args) == 0 {
			if mon.showLines {
				mon.printLine(terminal.StyleFeedback, "line display on halt: on")
			} else {
				mon.printLine(terminal.StyleFeedback, "line display on halt: off")
			}
			return nil
		}
		switch strings.ToUpper(args[0]) {
		case "ON":
			mon.showLines = true
		case "OFF":
			mon.showLines = false
		default:
			return curated.Errorf("monitor: unrecognised argument for %s (%s)", cmdTrace, args[0])
		}

	case cmdMaster:
		mon.printLine(terminal.StyleMachineInfo, "%s", mon.machine.Master.String())
		mon.printLine(terminal.StyleMachineInfo, "divider: %d (clock period of %d ticks)",
			mon.machine.Master.Divider(), mon.machine.Master.Divider()*2)

	case cmdSlave:
		if len(args) >= 1 {
			s, err := mon.findSlave(args[0])
			if err != nil {
				return err
			}
			mon.printLine(terminal.StyleMachineInfo, "%s", s.String())
			return nil
		}
		for _, s := range mon.machine.Slaves {
			mon.printLine(terminal.StyleMachineInfo, "%s", s.String())
		}

	case cmdAttach:
		if len(args) < 1 {
			return curated.Errorf("monitor: %s requires an address", cmdAttach)
		}
		addr, err := parseAddress(args[0])
		if err != nil {
			return err
		}
		s, err := mon.machine.AddSlave(addr)
		if err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "attached: %s", s.String())

	case cmdPeek:
		if len(args) < 1 {
			return curated.Errorf("monitor: %s requires an address", cmdPeek)
		}
		s, err := mon.findSlave(args[0])
		if err != nil {
			return err
		}
		mon.printLine(terminal.StyleMachineInfo, "%#02x -> %#03x", s.Address, s.Peek())

	case cmdPoke:
		if len(args) < 2 {
			return curated.Errorf("monitor: %s requires an address and a value", cmdPoke)
		}
		s, err := mon.findSlave(args[0])
		if err != nil {
			return err
		}
		val, err := parseValue(args[1])
		if err != nil {
			return err
		}
		s.Poke(val)
		mon.printLine(terminal.StyleFeedback, "%#02x <- %#03x", s.Address, s.Peek())

	case cmdHelp:
		if len(args) == 0 {
			mon.printLine(terminal.StyleHelp, "%s", mon.commands.String())
			return nil
		}
		c, ok := mon.commands.Lookup(args[0])
		if !ok {
			mon.printLine(terminal.StyleHelp, "no help for %s", strings.ToUpper(args[0]))
			return nil
		}
		if c.Template != "" {
			mon.printLine(terminal.StyleHelp, "%s %s", c.Name, c.Template)
		} else {
			mon.printLine(terminal.StyleHelp, "%s", c.Name)
		}
		mon.printLine(terminal.StyleHelp, "%s", c.Help)

	case cmdLog:
		if len(args) == 0 {
			logger.Write(mon.printStyle(terminal.StyleLog))
			return nil
		}
		switch strings.ToUpper(args[0]) {
		case "LAST":
			logger.Tail(mon.printStyle(terminal.StyleLog), 1)
		case "RECENT":
			logger.WriteRecent(mon.printStyle(terminal.StyleLog))
		case "CLEAR":
			logger.Clear()
		default:
			return curated.Errorf("monitor: unrecognised argument for %s (%s)", cmdLog, args[0])
		}

	case cmdPrefs:
		return mon.parsePrefs(args)

	case cmdViz:
		return mon.memoryViz()
	}

	return nil
}

// parsePrefs processes the arguments to the PREFS command.
func (mon *Monitor) parsePrefs(args []string) error {
	if len(args) == 0 {
		mon.printLine(terminal.StyleMachineInfo, "%s", mon.machine.Env.Prefs.String())
		return nil
	}

	switch strings.ToUpper(args[0]) {
	case "LOAD":
		if err := mon.machine.Env.Prefs.Load(); err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "preferences loaded")

	case "SAVE":
		if err := mon.machine.Env.Prefs.Save(); err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "preferences saved")

	case "DIVIDER":
		if len(args) < 2 {
			return curated.Errorf("monitor: missing value for %s DIVIDER", cmdPrefs)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return curated.Errorf("monitor: not a valid divider (%s)", args[1])
		}
		if err := mon.machine.Env.Prefs.Divider.Set(n); err != nil {
			return err
		}
		mon.printLine(terminal.StyleFeedback, "divider: %d", mon.machine.Master.Divider())

	case "RANDSTATE":
		if len(args) < 2 {
			return curated.Errorf("monitor: missing value for %s RANDSTATE", cmdPrefs)
		}
		switch strings.ToUpper(args[1]) {
		case "ON":
			if err := mon.machine.Env.Prefs.RandomState.Set(true); err != nil {
				return err
			}
		case "OFF":
			if err := mon.machine.Env.Prefs.RandomState.Set(false); err != nil {
				return err
			}
		default:
			return curated.Errorf("monitor: unrecognised argument for %s RANDSTATE (%s)", cmdPrefs, args[1])
		}
		mon.printLine(terminal.StyleFeedback, "random state: %s", strings.ToLower(args[1]))

	default:
		return curated.Errorf("monitor: unrecognised argument for %s (%s)", cmdPrefs, args[0])
	}

	return nil
}

// postTransaction hands a transaction to the master without stepping the
// machine. the STEP and RUN commands move the transaction along.
func (mon *Monitor) postTransaction(tr hardware.Transaction) error {
	if err := mon.machine.Post(tr); err != nil {
		return err
	}
	mon.posted = tr
	mon.pending = true
	mon.printLine(terminal.StyleFeedback, "posted: %s", tr)
	return nil
}

// doTransaction runs a transaction from start to stop and reports the
// outcome.
func (mon *Monitor) doTransaction(tr hardware.Transaction) error {
	v, err := mon.machine.Do(tr)
	if err != nil {
		if !curated.Is(err, hardware.NoAck) {
			return err
		}
		mon.printLine(terminal.StyleError, "%s", err)
	} else if tr.Direction == master.Reading {
		mon.printLine(terminal.StyleMachineInfo, "%s -> %#03x", tr, v)
	} else {
		mon.printLine(terminal.StyleFeedback, "%s", tr)
	}

	if mon.showLines {
		mon.displayLines()
	}

	return nil
}

// reportResult prints the outcome of the most recently posted transaction.
func (mon *Monitor) reportResult() {
	defer func() { mon.pending = false }()

	if mon.machine.Master.AckError() {
		mon.printLine(terminal.StyleError, "no acknowledgement from %#02x", mon.posted.Address)
	} else if mon.pending && mon.posted.Direction == master.Reading {
		mon.printLine(terminal.StyleMachineInfo, "%s -> %#03x", mon.posted, mon.machine.Master.ReadData())
	} else if mon.pending {
		mon.printLine(terminal.StyleFeedback, "%s", mon.posted)
	}

	if mon.showLines {
		mon.displayLines()
	}
}

// displayLines prints the recent activity of both bus lines, and the devices
// holding a line low, if any.
func (mon *Monitor) displayLines() {
	b := mon.machine.Bus
	mon.printLine(terminal.StyleMachineInfo, "%s", b.String())

	if h := b.Holders(b.SCL); len(h) > 0 {
		mon.printLine(terminal.StyleMachineInfo, "SCL held low by: %s", strings.Join(h, ", "))
	}
	if h := b.Holders(b.SDA); len(h) > 0 {
		mon.printLine(terminal.StyleMachineInfo, "SDA held low by: %s", strings.Join(h, ", "))
	}
}

// findSlave locates the attached device with the given address.
func (mon *Monitor) findSlave(arg string) (*slave.Slave, error) {
	addr, err := parseAddress(arg)
	if err != nil {
		return nil, err
	}
	for _, s := range mon.machine.Slaves {
		if s.Address == addr {
			return s, nil
		}
	}
	return nil, curated.Errorf("monitor: no device attached at %#02x", addr)
}

// parseAddress converts a numeric string into a seven bit device address.
func parseAddress(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v > 0x7f {
		return 0, curated.Errorf("monitor: not a valid address (%s)", s)
	}
	return uint8(v), nil
}

// parseValue converts a numeric string into a twelve bit value.
func parseValue(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil || v > 0x0fff {
		return 0, curated.Errorf("monitor: not a valid twelve bit value (%s)", s)
	}
	return uint16(v), nil
}
