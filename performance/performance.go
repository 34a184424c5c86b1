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

package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/hardware/preferences"
	"github.com/jetsetilly/gopherwire/monitor/govern"
)

// Check the performance of the machine at the given divider setting.
//
// The machine will run for the specified duration with the bus saturated by
// write transactions. A cpu profile, memory profile or execution trace (or a
// combination of those) is created as defined by the profile argument.
func Check(output io.Writer, profile Profile, divider int, duration string) error {
	prf, err := preferences.NewPreferences()
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// the run should be comparable from measurement to measurement, whatever
	// is in the preferences file on disk
	prf.SetDefaults()

	if err := prf.Divider.Set(divider); err != nil {
		return curated.Errorf("performance: %v", err)
	}

	m, err := hardware.NewMachine("performance", prf)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// parse supplied duration
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// the workload is a stream of write transactions to the one attached
	// device
	addr := m.Slaves[0].Address
	payload := uint16(0)

	// get starting transaction number (should be 0)
	startTransaction := m.Bus.GetCoords().Transaction

	runner := func() error {
		// setup trigger that expires when duration has elapsed. signals true
		// when duration has expired. signals false to indicate that
		// performance measurement should start
		timerChan := make(chan bool)

		// force a two second leadtime to allow the run to settle down and
		// then restart the timer for the specified duration
		go func() {
			time.AfterFunc(2*time.Second, func() {
				timerChan <- false
				time.AfterFunc(dur, func() {
					timerChan <- true
				})
			})
		}()

		// only check the timer every PerformanceBrake ticks. checking the
		// timerChan is relatively expensive
		performanceBrake := 0

		// run until specified time elapses
		return m.Run(func() (govern.State, error) {
			// keep the bus saturated
			if !m.Master.Busy() {
				payload = (payload + 1) & 0x0fff
				tr := hardware.Transaction{Direction: master.Writing, Address: addr, Payload: payload}
				if err := m.Post(tr); err != nil {
					return govern.Ending, err
				}
			}

			performanceBrake++
			if performanceBrake >= hardware.PerformanceBrake {
				performanceBrake = 0

				select {
				case v := <-timerChan:
					if v {
						// measurement period has finished
						return govern.Ending, nil
					}

					// leadtime has concluded. the measurement has begun and
					// we should record the start transaction
					startTransaction = m.Bus.GetCoords().Transaction
				default:
				}
			}

			return govern.Running, nil
		})
	}

	// launch runner directly or through the profiler, depending on supplied
	// arguments
	if err := RunProfiler(profile, "performance", runner); err != nil {
		return curated.Errorf("performance: %v", err)
	}

	// get ending transaction number
	endTransaction := m.Bus.GetCoords().Transaction

	// calculate performance
	numTransactions := endTransaction - startTransaction
	tps := float64(numTransactions) / dur.Seconds()
	output.Write([]byte(fmt.Sprintf("%.2f transactions/sec (%d transactions in %.2f seconds) divider=%d\n",
		tps, numTransactions, dur.Seconds(), divider)))

	return nil
}
