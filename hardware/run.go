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
	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/monitor/govern"
)

// The continueCheck() function runs after every tick of the machine, which
// can make a full continue check expensive. The PerformanceBrake is a
// standard value that can be used to filter out expensive code paths within
// a continueCheck() implementation. For example:
//
//	performanceFilter++
//	if performanceFilter >= hardware.PerformanceBrake {
//		performanceFilter = 0
//		if endCondition {
//			return govern.Ending, nil
//		}
//	}
//	return govern.Running, nil
const PerformanceBrake = 100

// Run sets the machine running as quickly as possible.
//
// The continueCheck() function is called after every tick and should return
// govern.Ending when the machine should stop. A nil continueCheck will run
// the machine forever.
func (m *Machine) Run(continueCheck func() (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func() (govern.State, error) { return govern.Running, nil }
	}

	state := govern.Running

	for state != govern.Ending {
		switch state {
		case govern.Running:
			if err := m.Step(); err != nil {
				return err
			}
		case govern.Paused:
		default:
			return curated.Errorf("machine: unsupported state (%v) in Run() function", state)
		}

		var err error
		state, err = continueCheck()
		if err != nil {
			return err
		}
	}

	return nil
}

// RunForTransactions sets the machine running until the given number of
// transactions have completed. Useful for the verification harness and for
// performance profiling. The continueCheck() function can be nil.
//
// The machine only makes progress if transactions are being posted, either
// beforehand or from the continueCheck() function. If the bus falls idle
// with no transaction in flight RunForTransactions returns early rather
// than spin forever.
func (m *Machine) RunForTransactions(numTransactions int, continueCheck func(transaction int) (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func(transaction int) (govern.State, error) { return govern.Running, nil }
	}

	transaction := m.Bus.GetCoords().Transaction
	targetTransaction := transaction + numTransactions

	state := govern.Running
	for transaction != targetTransaction && state != govern.Ending {
		if err := m.Step(); err != nil {
			return err
		}

		transaction = m.Bus.GetCoords().Transaction

		var err error
		state, err = continueCheck(transaction)
		if err != nil {
			return err
		}

		if !m.Master.Busy() && transaction != targetTransaction {
			return nil
		}
	}

	return nil
}
