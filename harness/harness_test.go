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

package harness_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherwire/harness"
	"github.com/jetsetilly/gopherwire/test"
)

func TestVerify(t *testing.T) {
	scr := harness.DefaultScript()
	scr.Slaves = []uint8{0x50, 0x31}
	scr.Seed = 7
	scr.Exchanges = 20

	dig, err := harness.Verify(io.Discard, scr)
	if err != nil {
		t.Fatal(err.Error())
	}

	// a sha1 hash in hexadecimal
	test.ExpectEquality(t, len(dig), 40)
}

func TestVerifyDeterminism(t *testing.T) {
	scr := harness.DefaultScript()
	scr.Seed = 1
	scr.Exchanges = 10

	a, err := harness.Verify(nil, scr)
	test.DemandSuccess(t, err)

	b, err := harness.Verify(nil, scr)
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, a, b)

	// a different seed produces a different stream of exchanges and
	// therefore different activity on the lines
	scr.Seed = 2
	c, err := harness.Verify(nil, scr)
	test.DemandSuccess(t, err)

	test.ExpectInequality(t, a, c)
}

func TestVerifyDigestExpectation(t *testing.T) {
	scr := harness.DefaultScript()
	scr.Exchanges = 5

	dig, err := harness.Verify(nil, scr)
	test.DemandSuccess(t, err)

	scr.Digest = dig
	_, err = harness.Verify(nil, scr)
	test.ExpectSuccess(t, err)

	scr.Digest = "mismatch"
	_, err = harness.Verify(nil, scr)
	test.ExpectFailure(t, err)
}

func TestScriptValidation(t *testing.T) {
	scr := harness.DefaultScript()
	scr.Divider = 1
	_, err := harness.Verify(nil, scr)
	test.ExpectFailure(t, err, "divider")

	scr = harness.DefaultScript()
	scr.Slaves = nil
	_, err = harness.Verify(nil, scr)
	test.ExpectFailure(t, err, "no slaves")

	scr = harness.DefaultScript()
	scr.Slaves = []uint8{0x20, 0x21, 0x22, 0x23}
	_, err = harness.Verify(nil, scr)
	test.ExpectFailure(t, err, "too many slaves")

	scr = harness.DefaultScript()
	scr.Slaves = []uint8{0x78}
	_, err = harness.Verify(nil, scr)
	test.ExpectFailure(t, err, "reserved address")

	scr = harness.DefaultScript()
	scr.Slaves = []uint8{0x50, 0x50}
	_, err = harness.Verify(nil, scr)
	test.ExpectFailure(t, err, "duplicate address")

	scr = harness.DefaultScript()
	scr.Exchanges = 0
	_, err = harness.Verify(nil, scr)
	test.ExpectFailure(t, err, "no exchanges")
}

func TestLoadScript(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "scenario.toml")

	script := `divider = 8
slaves = [0x50, 0x23]
seed = 99
exchanges = 25
digest = "0000"
`
	test.DemandSuccess(t, os.WriteFile(fn, []byte(script), 0644))

	scr, err := harness.LoadScript(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	test.ExpectEquality(t, scr.Divider, 8)
	test.ExpectEquality(t, len(scr.Slaves), 2)
	test.ExpectEquality(t, scr.Slaves[0], uint8(0x50))
	test.ExpectEquality(t, scr.Slaves[1], uint8(0x23))
	test.ExpectEquality(t, scr.Seed, int64(99))
	test.ExpectEquality(t, scr.Exchanges, 25)
	test.ExpectEquality(t, scr.Digest, "0000")
}

func TestLoadScriptDefaults(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "scenario.toml")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("exchanges = 5\n"), 0644))

	scr, err := harness.LoadScript(fn)
	if err != nil {
		t.Fatal(err.Error())
	}

	// fields not in the file keep their default values
	def := harness.DefaultScript()
	test.ExpectEquality(t, scr.Divider, def.Divider)
	test.ExpectEquality(t, len(scr.Slaves), 1)
	test.ExpectEquality(t, scr.Slaves[0], def.Slaves[0])
	test.ExpectEquality(t, scr.Seed, def.Seed)
	test.ExpectEquality(t, scr.Exchanges, 5)
}

func TestLoadScriptErrors(t *testing.T) {
	_, err := harness.LoadScript(filepath.Join(t.TempDir(), "absent.toml"))
	test.ExpectFailure(t, err, "missing file")

	// an address too big for seven bits
	fn := filepath.Join(t.TempDir(), "bad_address.toml")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("slaves = [200]\n"), 0644))
	_, err = harness.LoadScript(fn)
	test.ExpectFailure(t, err, "address range")

	fn = filepath.Join(t.TempDir(), "malformed.toml")
	test.DemandSuccess(t, os.WriteFile(fn, []byte("divider = = 2\n"), 0644))
	_, err = harness.LoadScript(fn)
	test.ExpectFailure(t, err, "malformed file")
}
