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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/logger"
)

// Load reads a capture from a stereo audio file. The file type is decided by
// the filename extension: ".wav" and ".mp3" files are supported.
//
// The first channel of the file is the clock line and the second channel is
// the data line. Any further channels are ignored.
func Load(filename string) (*Capture, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, curated.Errorf("capture: %v", err)
	}
	defer f.Close()

	cp := &Capture{}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".wav":
		dec := wav.NewDecoder(f)
		if dec == nil {
			return nil, curated.Errorf("capture: wav: error decoding")
		}

		if !dec.IsValidFile() {
			return nil, curated.Errorf("capture: wav: not a valid wav file")
		}

		logger.Log(logger.Allow, captureLogTag, "loading from wav file")

		// load all data at once
		buf, err := dec.FullPCMBuffer()
		if err != nil {
			return nil, curated.Errorf("capture: wav: %v", err)
		}
		floatBuf := buf.AsFloat32Buffer()

		numChans := int(dec.NumChans)
		if numChans < 2 {
			return nil, curated.Errorf("capture: wav: two channels required (file has %d)", numChans)
		}

		clock := make([]float32, 0, len(floatBuf.Data)/numChans)
		data := make([]float32, 0, len(floatBuf.Data)/numChans)
		for i := 0; i+1 < len(floatBuf.Data); i += numChans {
			clock = append(clock, floatBuf.Data[i])
			data = append(data, floatBuf.Data[i+1])
		}

		cp.SCL = threshold(clock)
		cp.SDA = threshold(data)
		cp.SampleRate = float64(dec.SampleRate)

	case ".mp3":
		dec, err := mp3.NewDecoder(f)
		if err != nil {
			return nil, curated.Errorf("capture: mp3: %v", err)
		}

		logger.Log(logger.Allow, captureLogTag, "loading from mp3 file")

		// the decoded stream is always 16bit little-endian with two channels,
		// whatever the source file. four bytes per frame
		stream, err := io.ReadAll(dec)
		if err != nil {
			return nil, curated.Errorf("capture: mp3: %v", err)
		}

		clock := make([]float32, 0, len(stream)/4)
		data := make([]float32, 0, len(stream)/4)
		for i := 0; i+3 < len(stream); i += 4 {
			clock = append(clock, pcm16(stream[i], stream[i+1]))
			data = append(data, pcm16(stream[i+2], stream[i+3]))
		}

		cp.SCL = threshold(clock)
		cp.SDA = threshold(data)
		cp.SampleRate = float64(dec.SampleRate())

	default:
		return nil, curated.Errorf("capture: unsupported file type (%s)", filepath.Ext(filename))
	}

	if len(cp.SCL) == 0 {
		return nil, curated.Errorf("capture: empty recording (%s)", filename)
	}

	logger.Logf(logger.Allow, captureLogTag, "sample rate: %0.2fHz", cp.SampleRate)
	logger.Logf(logger.Allow, captureLogTag, "total time: %.02fs", cp.TotalTime())

	return cp, nil
}

// interpret two bytes as a little-endian sixteen bit sample.
func pcm16(lo byte, hi byte) float32 {
	f := int(lo) | (int(hi) << 8)

	// adjust value (same as interpreting as two's complement)
	if f >= 32768 {
		f -= 65536
	}

	return float32(f)
}

// threshold converts sampled amplitudes into line levels. the cut is made at
// the midpoint of the range observed in the channel.
func threshold(data []float32) []bool {
	if len(data) == 0 {
		return nil
	}

	lo := data[0]
	hi := data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	lv := make([]bool, len(data))

	// a channel with no transitions gives no midpoint to judge by. treat any
	// positive amplitude as a line held high
	if lo == hi {
		for i := range lv {
			lv[i] = lo > 0
		}
		return lv
	}

	mid := (lo + hi) / 2
	for i, v := range data {
		lv[i] = v > mid
	}

	return lv
}
