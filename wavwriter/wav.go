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

// Package wavwriter allows writing of bus line activity to disk as a WAV
// file. Note that line data is buffered in memory in its entirety, and
// written to disk when End() is called. It is therefore probably only
// suitable for short captures.
//
// Channel 0 of the written file carries the clock line and channel 1 the
// data line, one sample per machine tick. The result can be eyeballed in any
// audio editor or read back with the capture package.
package wavwriter

import (
	"os"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/logger"
	"github.com/youpy/go-wav"
)

// SampleFreq is the sample rate recorded in the file header. a machine tick
// has no real-time length so the choice is nominal. the capture package
// assumes this rate when replaying a recording.
const SampleFreq = 44100

// sample values for the high and low line states.
const (
	levelHi = 255
	levelLo = 0
)

// WavWriter implements the bus.Tracer interface.
type WavWriter struct {
	filename string
	buffer   []wav.Sample
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) (*WavWriter, error) {
	aw := &WavWriter{
		filename: filename,
		buffer:   make([]wav.Sample, 0),
	}

	return aw, nil
}

// Tick implements the bus.Tracer interface.
func (aw *WavWriter) Tick(lv bus.Levels) error {
	w := wav.Sample{}
	w.Values[0] = level(lv.SCL)
	w.Values[1] = level(lv.SDA)
	aw.buffer = append(aw.buffer, w)

	return nil
}

// End writes the buffered line activity to disk.
func (aw *WavWriter) End() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewWriter(f, uint32(len(aw.buffer)), 2, SampleFreq, 8)
	if enc == nil {
		return curated.Errorf("wavwriter: %v", "bad parameters for wav encoding")
	}

	logger.Logf(logger.Allow, "wavwriter", "writing line activity to %s", aw.filename)

	err = enc.WriteSamples(aw.buffer)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	return nil
}

func level(v bool) int {
	if v {
		return levelHi
	}
	return levelLo
}
