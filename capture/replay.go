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

package capture

import (
	"math"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/hardware/slave"
	"github.com/jetsetilly/gopherwire/logger"
	"github.com/jetsetilly/gopherwire/wavwriter"
)

// Replay plays the capture into a slave engine through a private bus,
// recovering the values written during the recorded session.
//
// The slave engine does the decoding: the capture supplies the levels the
// recorded master drove onto the lines and the slave interprets them exactly
// as it would have done live. Values the recorded master read from a device
// are not recovered, only the writes.
//
// The address argument is the device address to listen for. Writes to any
// other address are ignored, as they would be by a live device.
func (cp *Capture) Replay(address uint8) ([]uint16, error) {
	b := bus.NewBus()

	env, err := environment.NewEnvironment("replay", b, nil)
	if err != nil {
		return nil, curated.Errorf("capture: %v", err)
	}
	env.Normalise()

	s, err := slave.NewSlave(env, b, address)
	if err != nil {
		return nil, curated.Errorf("capture: %v", err)
	}

	id, err := b.Join("capture")
	if err != nil {
		return nil, curated.Errorf("capture: %v", err)
	}

	// captures are written at one sample per machine tick at the rate given
	// by wavwriter.SampleFreq. a capture that has been resampled to a higher
	// rate advances more than one sample per tick
	stride := int(math.Round(cp.SampleRate / wavwriter.SampleFreq))
	if stride < 1 {
		stride = 1
	}
	logger.Logf(logger.Allow, captureLogTag, "replay regulator: %d sample(s) per tick", stride)

	written := make([]uint16, 0, 4)

	for i := 0; i < len(cp.SCL); i += stride {
		// drive the lines to the recorded levels. a low level is a pull and a
		// high level a release. pulls from the slave combine with the
		// recorded levels in the usual way
		if cp.SCL[i] {
			b.SCL.Release(id)
		} else {
			b.SCL.PullLow(id)
		}
		if cp.SDA[i] {
			b.SDA.Release(id)
		} else {
			b.SDA.PullLow(id)
		}

		s.Step()

		if err := b.Commit(); err != nil {
			return nil, curated.Errorf("capture: %v", err)
		}

		if s.WriteValid {
			written = append(written, s.Written)
		}
	}

	logger.Logf(logger.Allow, captureLogTag, "replay recovered %d write(s)", len(written))

	return written, nil
}
