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

package capture_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/gopherwire/capture"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/bus"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/test"
	"github.com/jetsetilly/gopherwire/wavwriter"
)

func newCaptureMachine(t *testing.T) *hardware.Machine {
	t.Helper()

	m, err := hardware.NewMachine(environment.MainEmulation, nil)
	if err != nil {
		t.Fatal(err.Error())
	}
	m.Env.Normalise()

	return m
}

func TestImplementsTracer(t *testing.T) {
	test.ExpectImplements[bus.Tracer](t, capture.NewRecorder(), nil)
}

func TestRecorderReplay(t *testing.T) {
	m := newCaptureMachine(t)

	rec := capture.NewRecorder()
	m.Bus.AddTracer(rec)

	_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x5a3})
	test.ExpectSuccess(t, err)

	// a read should leave no impression on the recovered writes
	_, err = m.Do(hardware.Transaction{Direction: master.Reading, Address: 0x50})
	test.ExpectSuccess(t, err)

	_, err = m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x123})
	test.ExpectSuccess(t, err)

	written, err := rec.Capture().Replay(0x50)
	if err != nil {
		t.Fatal(err.Error())
	}

	test.ExpectEquality(t, len(written), 2)
	test.ExpectEquality(t, written[0], uint16(0x5a3))
	test.ExpectEquality(t, written[1], uint16(0x123))
}

func TestReplayOtherAddress(t *testing.T) {
	m := newCaptureMachine(t)

	rec := capture.NewRecorder()
	m.Bus.AddTracer(rec)

	_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x5a3})
	test.ExpectSuccess(t, err)

	// the replay device answers to a different address so the recorded write
	// passes it by
	written, err := rec.Capture().Replay(0x31)
	if err != nil {
		t.Fatal(err.Error())
	}

	test.ExpectEquality(t, len(written), 0)
}

func TestWavRoundTrip(t *testing.T) {
	m := newCaptureMachine(t)

	fn := filepath.Join(t.TempDir(), "capture.wav")

	aw, err := wavwriter.New(fn)
	if err != nil {
		t.Fatal(err.Error())
	}
	m.Bus.AddTracer(aw)

	rec := capture.NewRecorder()
	m.Bus.AddTracer(rec)

	_, err = m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x29a})
	test.ExpectSuccess(t, err)

	err = aw.End()
	if err != nil {
		t.Fatal(err.Error())
	}

	cp, err := capture.Load(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	// the loaded capture should match the live recording level for level
	live := rec.Capture()
	test.ExpectEquality(t, len(cp.SCL), len(live.SCL))
	test.ExpectEquality(t, len(cp.SDA), len(live.SDA))
	for i := range cp.SCL {
		test.ExpectEquality(t, cp.SCL[i], live.SCL[i], i)
		test.ExpectEquality(t, cp.SDA[i], live.SDA[i], i)
	}

	written, err := cp.Replay(0x50)
	if err != nil {
		t.Fatal(err.Error())
	}

	test.ExpectEquality(t, len(written), 1)
	test.ExpectEquality(t, written[0], uint16(0x29a))
}

func TestExport(t *testing.T) {
	m := newCaptureMachine(t)

	rec := capture.NewRecorder()
	m.Bus.AddTracer(rec)

	_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x0f0})
	test.ExpectSuccess(t, err)

	fn := filepath.Join(t.TempDir(), "export.wav")

	err = rec.Capture().Export(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	cp, err := capture.Load(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	written, err := cp.Replay(0x50)
	if err != nil {
		t.Fatal(err.Error())
	}

	test.ExpectEquality(t, len(written), 1)
	test.ExpectEquality(t, written[0], uint16(0x0f0))
}

func TestLoadThreshold(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "levels.wav")

	f, err := os.Create(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	// amplitude convention chosen to be nothing like the one used by the
	// wavwriter package. thresholding should not care
	const hi = 12000
	const lo = -12000

	scl := []int{hi, lo, hi, lo, hi, hi, lo, hi}
	sda := []int{hi, hi, lo, lo, lo, hi, hi, hi}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		SourceBitDepth: 16,
	}
	for i := range scl {
		buf.Data = append(buf.Data, scl[i], sda[i])
	}

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	err = enc.Write(buf)
	if err != nil {
		t.Fatal(err.Error())
	}
	err = enc.Close()
	if err != nil {
		t.Fatal(err.Error())
	}
	err = f.Close()
	if err != nil {
		t.Fatal(err.Error())
	}

	cp, err := capture.Load(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	test.ExpectEquality(t, len(cp.SCL), len(scl))
	for i := range scl {
		test.ExpectEquality(t, cp.SCL[i], scl[i] == hi, i)
		test.ExpectEquality(t, cp.SDA[i], sda[i] == hi, i)
	}

	test.ExpectEquality(t, cp.SampleRate, float64(44100))
}

func TestLoadErrors(t *testing.T) {
	_, err := capture.Load("no_such_file.wav")
	test.ExpectFailure(t, err)

	_, err = capture.Load("capture_test.go")
	test.ExpectFailure(t, err)

	// a mono file cannot carry both lines
	fn := filepath.Join(t.TempDir(), "mono.wav")

	f, err := os.Create(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: 44100},
		Data:           []int{0, 100, 0, 100},
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(f, 44100, 16, 1, 1)
	err = enc.Write(buf)
	if err != nil {
		t.Fatal(err.Error())
	}
	err = enc.Close()
	if err != nil {
		t.Fatal(err.Error())
	}
	err = f.Close()
	if err != nil {
		t.Fatal(err.Error())
	}

	_, err = capture.Load(fn)
	test.ExpectFailure(t, err)
}
