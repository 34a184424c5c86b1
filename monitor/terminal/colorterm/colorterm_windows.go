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

//go:build windows

// Package colorterm is not available under windows.
package colorterm

import (
	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/monitor/terminal"
)

// ColorTerminal is a stub implementation for windows. Use the plainterm
// package instead.
type ColorTerminal struct {
}

// Initialise always fails under windows.
func (ct *ColorTerminal) Initialise() error {
	return curated.Errorf("colorterm: not supported on windows")
}

// CleanUp is a stub function.
func (ct *ColorTerminal) CleanUp() {
}

// RegisterTabCompletion is a stub function.
func (ct *ColorTerminal) RegisterTabCompletion(terminal.TabCompletion) {
}

// Silence is a stub function.
func (ct *ColorTerminal) Silence(silenced bool) {
}

// TermPrintLine is a stub function.
func (ct *ColorTerminal) TermPrintLine(style terminal.Style, s string) {
}

// TermRead is a stub function.
func (ct *ColorTerminal) TermRead(prompt terminal.Prompt, events *terminal.ReadEvents) (string, error) {
	return "", curated.Errorf("colorterm: not supported on windows")
}

// TermReadCheck is a stub function.
func (ct *ColorTerminal) TermReadCheck() bool {
	return false
}

// IsInteractive is a stub function.
func (ct *ColorTerminal) IsInteractive() bool {
	return false
}
