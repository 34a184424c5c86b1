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

// Package harness drives randomised exchanges through a machine, checking
// the properties every transaction should have, whatever its content:
//
//   - a value written to a device and then read back comes back unchanged
//
//   - an exchange addressed to an absent device is not acknowledged and
//     leaves the memory of every attached device untouched
//
//   - the master is busy for the same number of ticks for every transaction
//     of the same shape, and that number is proportional to the number of
//     bits on the wire
//
//   - the data line never changes during a clock-high period except for the
//     start and stop conditions, of which every transaction has exactly one
//     each
//
// The scenario is described by a Script, either constructed directly or
// loaded from a TOML file with LoadScript(). The same script always produces
// the same bus activity, tick for tick, which is the basis of the regression
// package.
package harness

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/digest"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/hardware/preferences"
	"github.com/jetsetilly/gopherwire/monitor/terminal/colorterm/easyterm/ansi"
	"github.com/jetsetilly/gopherwire/performance/limiter"
)

// number of bit periods in an acknowledged transaction: three nine bit
// frames. a probe of an absent device is cut short after the address frame.
const (
	ackBitPeriods  = 27
	missBitPeriods = 10
)

// Verify runs the scenario described by the script, checking the protocol
// laws on every exchange. The returned string is the digest of all bus
// activity over the run.
//
// The output writer receives a summary of the run. It may be nil.
func Verify(output io.Writer, scr Script) (string, error) {
	if output == nil {
		output = io.Discard
	}

	if err := scr.validate(); err != nil {
		return "", err
	}

	prf, err := preferences.NewPreferences()
	if err != nil {
		return "", curated.Errorf("harness: %v", err)
	}

	// the machine must behave the same for everyone, whatever is in the
	// preferences file on disk
	prf.SetDefaults()

	if err := prf.Divider.Set(scr.Divider); err != nil {
		return "", curated.Errorf("harness: %v", err)
	}
	if err := prf.SlaveAddress.Set(int(scr.Slaves[0])); err != nil {
		return "", curated.Errorf("harness: %v", err)
	}

	m, err := hardware.NewMachine("harness", prf)
	if err != nil {
		return "", curated.Errorf("harness: %v", err)
	}
	for _, a := range scr.Slaves[1:] {
		if _, err := m.AddSlave(a); err != nil {
			return "", curated.Errorf("harness: %v", err)
		}
	}

	dig := digest.NewBus(m.Bus)

	shp := newShapeObserver()
	m.Bus.AddTracer(shp)

	rng := rand.New(rand.NewPCG(uint64(scr.Seed), uint64(scr.Seed)))

	// update progress meter every second
	lim, err := limiter.NewRateLimiter(1)
	if err != nil {
		return "", curated.Errorf("harness: %v", err)
	}

	// durations are learned from the first transaction of each shape and
	// demanded of every subsequent transaction of that shape
	ackDuration := -1
	missDuration := -1

	checkAck := func(d int) error {
		if ackDuration == -1 {
			ackDuration = d
			if !within(d, ackBitPeriods*2*scr.Divider, 0.1) {
				return curated.Errorf("harness: duration: acknowledged exchange took %d ticks, expected around %d",
					d, ackBitPeriods*2*scr.Divider)
			}
			return nil
		}
		if d != ackDuration {
			return curated.Errorf("harness: duration: exchange took %d ticks, every other has taken %d", d, ackDuration)
		}
		return nil
	}

	checkMiss := func(d int) error {
		if missDuration == -1 {
			missDuration = d
			if !within(d, missBitPeriods*2*scr.Divider, 0.15) {
				return curated.Errorf("harness: duration: missed exchange took %d ticks, expected around %d",
					d, missBitPeriods*2*scr.Divider)
			}
			return nil
		}
		if d != missDuration {
			return curated.Errorf("harness: duration: missed exchange took %d ticks, every other has taken %d", d, missDuration)
		}
		return nil
	}

	// every transaction must put exactly one start and one stop condition on
	// the wire
	conditions := 0
	checkShape := func() error {
		conditions++
		if shp.starts != conditions || shp.stops != conditions {
			return curated.Errorf("harness: shape: %d start(s) and %d stop(s) after %d transactions",
				shp.starts, shp.stops, conditions)
		}
		return nil
	}

	numWrites := 0
	numReads := 0
	numMisses := 0

	for i := 0; i < scr.Exchanges; i++ {
		if lim.HasWaited() {
			output.Write([]byte(fmt.Sprintf("\rverifying: exchange %d of %d", i+1, scr.Exchanges)))
		}

		// one exchange in eight probes an address with no device attached
		if rng.IntN(8) == 0 {
			if err := verifyMiss(m, scr, rng, checkMiss, checkShape, shp); err != nil {
				return "", err
			}
			numMisses++
			continue
		}

		addr := scr.Slaves[rng.IntN(len(scr.Slaves))]
		payload := uint16(rng.IntN(0x1000))

		t0 := shp.ticks
		if _, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: addr, Payload: payload}); err != nil {
			return "", curated.Errorf("harness: write to %#02x: %v", addr, err)
		}
		if err := checkAck(shp.ticks - t0); err != nil {
			return "", err
		}
		if err := checkShape(); err != nil {
			return "", err
		}
		numWrites++

		t0 = shp.ticks
		r, err := m.Do(hardware.Transaction{Direction: master.Reading, Address: addr})
		if err != nil {
			return "", curated.Errorf("harness: read from %#02x: %v", addr, err)
		}
		if err := checkAck(shp.ticks - t0); err != nil {
			return "", err
		}
		if err := checkShape(); err != nil {
			return "", err
		}
		numReads++

		if r != payload {
			return "", curated.Errorf("harness: round trip: wrote %#03x to %#02x and read back %#03x", payload, addr, r)
		}
	}

	output.Write([]byte(ansi.ClearLine))
	output.Write([]byte(fmt.Sprintf("\rverified %d exchanges: %d writes, %d reads, %d misses\n",
		scr.Exchanges, numWrites, numReads, numMisses)))
	output.Write([]byte(fmt.Sprintf("bus activity: %s\n", dig.Hash())))

	if scr.Digest != "" && dig.Hash() != scr.Digest {
		return "", curated.Errorf("harness: digest: bus activity does not match the script expectation")
	}

	return dig.Hash(), nil
}

// VerifyFile loads a scenario script and runs it with Verify().
func VerifyFile(output io.Writer, filename string) (string, error) {
	scr, err := LoadScript(filename)
	if err != nil {
		return "", err
	}
	return Verify(output, scr)
}

// a single probe of an address with no device attached. the probe must not
// be acknowledged and must leave every memory cell untouched.
func verifyMiss(m *hardware.Machine, scr Script, rng *rand.Rand,
	checkMiss func(int) error, checkShape func() error, shp *shapeObserver) error {

	// pick an assignable address with no device attached
	var addr uint8
	for {
		addr = uint8(0x08 + rng.IntN(0x70))
		if !attached(scr, addr) {
			break
		}
	}

	dir := master.Writing
	if rng.IntN(2) == 0 {
		dir = master.Reading
	}

	before := make([]uint16, len(m.Slaves))
	for i, s := range m.Slaves {
		before[i] = s.Peek()
	}

	t0 := shp.ticks
	_, err := m.Do(hardware.Transaction{Direction: dir, Address: addr, Payload: uint16(rng.IntN(0x1000))})
	if err == nil {
		return curated.Errorf("harness: probe of %#02x was acknowledged", addr)
	}
	if !curated.Is(err, hardware.NoAck) {
		return curated.Errorf("harness: %v", err)
	}

	if err := checkMiss(shp.ticks - t0); err != nil {
		return err
	}
	if err := checkShape(); err != nil {
		return err
	}

	for i, s := range m.Slaves {
		if s.Peek() != before[i] {
			return curated.Errorf("harness: probe of %#02x changed the memory of %#02x", addr, s.Address)
		}
	}

	return nil
}

func attached(scr Script, addr uint8) bool {
	for _, a := range scr.Slaves {
		if a == addr {
			return true
		}
	}
	return false
}

func within(v int, want int, tolerance float64) bool {
	top := float64(want) * (1 + tolerance)
	bot := float64(want) * (1 - tolerance)
	return float64(v) >= bot && float64(v) <= top
}
