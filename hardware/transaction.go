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

package hardware

import (
	"fmt"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware/master"
)

// Sentinal errors.
const (
	Busy  = "machine: transaction in progress"
	NoAck = "machine: no acknowledgement from %#02x"
)

// Transaction describes a single request to the master. Once accepted by
// Do() or Post() the request is immutable.
type Transaction struct {
	Direction master.Direction
	Address   uint8

	// Payload is ignored for read transactions
	Payload uint16
}

func (tr Transaction) String() string {
	if tr.Direction == master.Reading {
		return fmt.Sprintf("read %#02x", tr.Address)
	}
	return fmt.Sprintf("write %#02x <- %#03x", tr.Address, tr.Payload)
}

// Post hands a transaction to the master without running the machine. The
// transaction begins on the next call to Step() and the caller is
// responsible for stepping the machine until Busy() deasserts.
//
// Returns an error if a transaction is already in progress.
func (m *Machine) Post(tr Transaction) error {
	if m.Master.Busy() {
		return curated.Errorf(Busy)
	}
	m.Master.Begin(tr.Direction, tr.Address, tr.Payload)
	return nil
}

// Do runs a single transaction from start condition to stop condition,
// stepping the machine as many times as the transaction needs.
//
// For read transactions the returned value is the twelve bit value supplied
// by the addressed device. For write transactions it is the payload as
// accepted by the master.
//
// If no device acknowledges the transaction the NoAck error is returned.
// The machine is left in a clean state: a failed transaction still ends
// with a stop condition and another transaction can follow immediately.
func (m *Machine) Do(tr Transaction) (uint16, error) {
	if err := m.Post(tr); err != nil {
		return 0, err
	}

	for m.Master.Busy() {
		if err := m.Step(); err != nil {
			return 0, err
		}
	}

	if m.Master.AckError() {
		return 0, curated.Errorf(NoAck, tr.Address)
	}

	if tr.Direction == master.Reading {
		return m.Master.ReadData(), nil
	}

	return tr.Payload & 0x0fff, nil
}
