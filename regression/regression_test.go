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

package regression

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/jetsetilly/gopherwire/regression/database"
	"github.com/jetsetilly/gopherwire/test"
)

func writeScript(t *testing.T, content string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "script.toml")
	err := os.WriteFile(fn, []byte(content), 0644)
	test.DemandSuccess(t, err)
	return fn
}

func TestTransactionRegress(t *testing.T) {
	fn := writeScript(t, `
divider = 2
slaves = [0x50]
seed = 3
exchanges = 5
`)

	reg := &TransactionRegression{Script: fn}

	// a new regression records the digest of the bus activity
	ok, err := reg.regress(true, io.Discard, "")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, len(reg.digest), 40)

	// rerunning the test reproduces the same bus activity
	ok, err = reg.regress(false, io.Discard, "")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)

	// a changed digest must be noticed
	reg.digest = "0000000000000000000000000000000000000000"
	ok, err = reg.regress(false, io.Discard, "")
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, ok)
}

func TestTransactionSerialise(t *testing.T) {
	reg := &TransactionRegression{
		key:    5,
		Script: "script.toml",
		Notes:  "two slaves",
		digest: "0123456789012345678901234567890123456789",
	}

	ser, err := reg.Serialise()
	test.ExpectSuccess(t, err)
	test.DemandEquality(t, len(ser), numTransactionFields)

	ent, err := deserialiseTransactionEntry(reg.key, ser)
	test.DemandSuccess(t, err)

	res, ok := ent.(*TransactionRegression)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, res.GetKey(), reg.key)
	test.ExpectEquality(t, res.Script, reg.Script)
	test.ExpectEquality(t, res.Notes, reg.Notes)
	test.ExpectEquality(t, res.digest, reg.digest)

	// the wrong number of fields should be noticed
	_, err = deserialiseTransactionEntry(0, database.SerialisedEntry{"a", "b"})
	test.ExpectFailure(t, err)
}

func TestTransactionString(t *testing.T) {
	reg := &TransactionRegression{Script: filepath.Join("some", "where", "script.toml")}
	test.ExpectEquality(t, reg.String(), "[transaction] script.toml")

	reg.Notes = "two slaves"
	test.ExpectEquality(t, reg.String(), "[transaction] script.toml [two slaves]")
}

func TestNewTransactionRegression(t *testing.T) {
	// notes cannot contain the database field separator
	_, err := NewTransactionRegression("script.toml", "a,b")
	test.ExpectFailure(t, err)

	// the script must load cleanly
	_, err = NewTransactionRegression(filepath.Join(t.TempDir(), "missing.toml"), "")
	test.ExpectFailure(t, err)
}

func TestImplementsRegressor(t *testing.T) {
	test.ExpectImplements[Regressor](t, &TransactionRegression{}, nil)
}
