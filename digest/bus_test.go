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

package digest_test

import (
	"testing"

	"github.com/jetsetilly/gopherwire/digest"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/master"
	"github.com/jetsetilly/gopherwire/test"
)

func newDigestMachine(t *testing.T) (*hardware.Machine, *digest.Bus) {
	t.Helper()

	m, err := hardware.NewMachine(environment.MainEmulation, nil)
	if err != nil {
		t.Fatal(err)
	}
	m.Env.Normalise()

	return m, digest.NewBus(m.Bus)
}

func TestImplementsDigest(t *testing.T) {
	_, dig := newDigestMachine(t)
	test.ExpectImplements[digest.Digest](t, dig, nil)
}

func TestReproducible(t *testing.T) {
	run := func() string {
		m, dig := newDigestMachine(t)
		_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x5a3})
		test.ExpectSuccess(t, err == nil)
		_, err = m.Do(hardware.Transaction{Direction: master.Reading, Address: 0x50})
		test.ExpectSuccess(t, err == nil)
		return dig.Hash()
	}

	// identical runs produce identical fingerprints
	test.ExpectEquality(t, run(), run())
}

func TestSensitivity(t *testing.T) {
	run := func(payload uint16) string {
		m, dig := newDigestMachine(t)
		_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: payload})
		test.ExpectSuccess(t, err == nil)
		return dig.Hash()
	}

	// a single bit of difference in the payload alters the bus activity and
	// so alters the fingerprint
	test.ExpectInequality(t, run(0x5a3), run(0x5a2))
}

func TestChaining(t *testing.T) {
	m, dig := newDigestMachine(t)

	_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x111})
	test.ExpectSuccess(t, err == nil)
	one := dig.Hash()

	_, err = m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x111})
	test.ExpectSuccess(t, err == nil)
	two := dig.Hash()

	// the same transaction again extends the chain rather than repeating it
	test.ExpectInequality(t, one, two)
}

func TestResetDigest(t *testing.T) {
	m, dig := newDigestMachine(t)

	zero := dig.Hash()

	_, err := m.Do(hardware.Transaction{Direction: master.Writing, Address: 0x50, Payload: 0x29a})
	test.ExpectSuccess(t, err == nil)
	test.ExpectInequality(t, dig.Hash(), zero)

	dig.ResetDigest()
	test.ExpectEquality(t, dig.Hash(), zero)
}
