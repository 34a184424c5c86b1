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
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/monitor/terminal"
	"github.com/jetsetilly/gopherwire/monitor/terminal/commandline"
)

// Monitor is the main container for the interactive bus monitor.
type Monitor struct {
	machine *hardware.Machine

	term     terminal.Terminal
	events   *terminal.ReadEvents
	commands *commandline.Commands

	// whether the input loop is to continue
	running bool

	// display line activity whenever the machine stops at the prompt. changed
	// with the TRACE command
	showLines bool

	// the most recently posted transaction. used by the RUN command to decide
	// how to report the result
	posted  hardware.Transaction
	pending bool
}

// NewMonitor is the preferred method of initialisation for the Monitor type.
//
// The Terminal implementation is not initialised until the Run() function is
// called.
func NewMonitor(machine *hardware.Machine, term terminal.Terminal) (*Monitor, error) {
	mon := &Monitor{
		machine:   machine,
		term:      term,
		showLines: true,
	}

	var err error

	mon.commands, err = commandline.NewCommands(commandTable)
	if err != nil {
		return nil, curated.Errorf("monitor: %v", err)
	}

	// monitored operating system signals. note that the interrupt signal is
	// handled by the input loop with a confirmation stage, rather than ending
	// the process immediately
	mon.events = &terminal.ReadEvents{
		Signal: make(chan os.Signal, 1),
		SignalHandler: func(sig os.Signal) error {
			switch sig {
			case syscall.SIGINT:
				return curated.Errorf(terminal.UserInterrupt)
			case syscall.SIGQUIT:
				return curated.Errorf(terminal.UserAbort)
			}
			return nil
		},
	}
	signal.Notify(mon.events.Signal, os.Interrupt, syscall.SIGQUIT)

	term.RegisterTabCompletion(commandline.NewTabCompletion(mon.commands))

	return mon, nil
}

// Run the monitor until the user quits or terminal input is exhausted. The
// terminal is initialised on entry and cleaned up before the function
// returns.
func (mon *Monitor) Run() error {
	err := mon.term.Initialise()
	if err != nil {
		return curated.Errorf("monitor: %v", err)
	}
	defer mon.term.CleanUp()

	mon.running = true

	err = mon.inputLoop()
	if err != nil {
		return curated.Errorf("monitor: %v", err)
	}

	return nil
}

// inputLoop reads and processes user input until the running flag is unset.
func (mon *Monitor) inputLoop() error {
	for mon.running {
		input, err := mon.term.TermRead(mon.buildPrompt(), mon.events)

		// errors returned by TermRead() are judged carefully. anything that
		// does not originate from this project is probably serious, except
		// for EOF which says the input source has dried up
		if err != nil {
			if !curated.IsAny(err) {
				if err == io.EOF {
					err = curated.Errorf(terminal.UserAbort)
				} else {
					return err
				}
			}

			if curated.Is(err, terminal.UserInterrupt) {
				mon.handleInterrupt()
				continue // for loop
			}
			if curated.Is(err, terminal.UserAbort) {
				mon.running = false
				continue // for loop
			}

			return err
		}

		err = mon.parseInput(input)
		if err != nil {
			mon.printLine(terminal.StyleError, "%s", err)
		}
	}

	return nil
}

// handleInterrupt is called when an interrupt is caught while waiting for
// input. for non-interactive input the monitor ends immediately. otherwise
// the user is asked for confirmation.
func (mon *Monitor) handleInterrupt() {
	if !mon.term.IsInteractive() {
		mon.running = false
		return
	}

	confirm, err := mon.term.TermRead(terminal.Prompt{
		Content: "really quit (y/n) ",
		Type:    terminal.PromptTypeConfirm,
	}, mon.events)

	if err != nil {
		// another interrupt is treated as though 'y' was pressed
		if curated.Is(err, terminal.UserInterrupt) {
			confirm = "y"
		} else {
			mon.printLine(terminal.StyleError, "%s", err)
		}
	}

	confirm = strings.ToLower(strings.TrimSpace(confirm))
	if strings.HasPrefix(confirm, "y") {
		mon.running = false
	}
}

// parseInput splits the input into individual commands on the semicolon
// character. each command is then passed to parseCommand() for processing.
func (mon *Monitor) parseInput(input string) error {
	// ignore comments
	if strings.HasPrefix(strings.TrimSpace(input), "#") {
		return nil
	}

	for _, s := range strings.Split(input, ";") {
		if err := mon.parseCommand(s); err != nil {
			return err
		}
	}

	return nil
}

// buildPrompt summarises the state of the machine for display by the
// terminal.
func (mon *Monitor) buildPrompt() terminal.Prompt {
	s := strings.Builder{}
	s.WriteString(mon.machine.Coords().String())

	if mon.machine.Master.Busy() {
		s.WriteString(fmt.Sprintf("  (%s)", mon.machine.Master.String()))
	}

	return terminal.Prompt{
		Type:    terminal.PromptTypeStep,
		Content: s.String(),
	}
}
