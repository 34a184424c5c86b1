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

// Package capture records the activity of the two lines and plays it back.
//
// A capture is the resolved level of both lines, one sample per machine
// tick. The Recorder type accumulates a capture from a live bus through the
// tracer interface. The Load() function reads a capture from a stereo audio
// file of the sort written by the wavwriter package: the first channel is
// the clock line and the second channel is the data line.
//
// Amplitudes in a loaded file are thresholded into line levels at the
// midpoint of the range observed in each channel, so the level convention of
// whatever produced the file does not matter.
//
// The Replay() function drives a capture into a slave engine through a
// private bus, recovering the values written during the recorded session.
package capture

import (
	"fmt"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/wavwriter"
)

// tag string used in calls to Log().
const captureLogTag = "capture"

// Capture is a recording of line activity, one entry per sample. The SCL and
// SDA arrays are always the same length.
type Capture struct {
	SCL []bool
	SDA []bool

	// speed of samples in Hz
	SampleRate float64
}

func (cp *Capture) String() string {
	return fmt.Sprintf("%d samples at %.2fHz (%.2fs)", len(cp.SCL), cp.SampleRate, cp.TotalTime())
}

// TotalTime returns the length of the recording in seconds.
func (cp *Capture) TotalTime() float64 {
	if cp.SampleRate == 0 {
		return 0
	}
	return float64(len(cp.SCL)) / cp.SampleRate
}

// Export writes the capture to a WAV file of the sort the Load() function
// can read back. Samples are written at the wavwriter rate whatever the
// capture's own sample rate.
func (cp *Capture) Export(filename string) error {
	aw, err := wavwriter.New(filename)
	if err != nil {
		return curated.Errorf("capture: %v", err)
	}

	for i := range cp.SCL {
		err = aw.Tick(bus.Levels{SCL: cp.SCL[i], SDA: cp.SDA[i]})
		if err != nil {
			return curated.Errorf("capture: %v", err)
		}
	}

	err = aw.End()
	if err != nil {
		return curated.Errorf("capture: %v", err)
	}

	return nil
}

// Recorder accumulates a Capture from a live bus. It implements the
// bus.Tracer interface and should be attached to the bus with the
// AddTracer() function.
type Recorder struct {
	cp *Capture
}

// NewRecorder is the preferred method of initialisation for the Recorder type.
func NewRecorder() *Recorder {
	return &Recorder{
		cp: &Capture{
			SCL:        make([]bool, 0, 1024),
			SDA:        make([]bool, 0, 1024),
			SampleRate: wavwriter.SampleFreq,
		},
	}
}

// Tick implements the bus.Tracer interface.
func (rec *Recorder) Tick(lv bus.Levels) error {
	rec.cp.SCL = append(rec.cp.SCL, lv.SCL)
	rec.cp.SDA = append(rec.cp.SDA, lv.SDA)
	return nil
}

// Capture returns the recording accumulated so far.
func (rec *Recorder) Capture() *Capture {
	return rec.cp
}
