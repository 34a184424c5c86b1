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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/harness"
	"github.com/jetsetilly/gopherwire/regression/database"
	"github.com/jetsetilly/gopherwire/resources"
	"github.com/jetsetilly/gopherwire/resources/unique"
)

const transactionEntryID = "transaction"

const (
	transactionFieldScript int = iota
	transactionFieldNotes
	transactionFieldDigest
	numTransactionFields
)

// TransactionRegression runs a harness script and compares the digest of the
// resulting bus activity with the digest recorded when the test was added.
type TransactionRegression struct {
	key    int
	Script string
	Notes  string
	digest string
}

// NewTransactionRegression is the preferred method of initialisation for the
// TransactionRegression type. The script file is copied into the regression
// directory.
func NewTransactionRegression(script string, notes string) (*TransactionRegression, error) {
	// a comma in the notes would corrupt the database entry
	if strings.Contains(notes, ",") {
		return nil, curated.Errorf("regression: notes cannot contain commas")
	}

	// make sure the script is valid before archiving anything
	if _, err := harness.LoadScript(script); err != nil {
		return nil, err
	}

	archived, err := archiveScript(script)
	if err != nil {
		return nil, err
	}

	return &TransactionRegression{
		Script: archived,
		Notes:  notes,
	}, nil
}

// copy the script into the regression directory so that the test keeps
// working even if the original file is later moved or edited.
func archiveScript(script string) (string, error) {
	src, err := os.ReadFile(script)
	if err != nil {
		return "", curated.Errorf("regression: %v", err)
	}

	base := filepath.Base(script)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	fn := fmt.Sprintf("%s.toml", unique.Filename("script", base))

	p, err := resources.JoinPath(regressionPath, regressionScripts, fn)
	if err != nil {
		return "", curated.Errorf("regression: %v", err)
	}

	if err := os.WriteFile(p, src, 0644); err != nil {
		return "", curated.Errorf("regression: %v", err)
	}

	return p, nil
}

func deserialiseTransactionEntry(key int, ser database.SerialisedEntry) (database.Entry, error) {
	reg := &TransactionRegression{key: key}

	// basic sanity check
	if len(ser) > numTransactionFields {
		return nil, curated.Errorf("regression: too many fields in transaction entry")
	}
	if len(ser) < numTransactionFields {
		return nil, curated.Errorf("regression: too few fields in transaction entry")
	}

	// string fields need no conversion
	reg.Script = ser[transactionFieldScript]
	reg.Notes = ser[transactionFieldNotes]
	reg.digest = ser[transactionFieldDigest]

	return reg, nil
}

// ID implements the database.Entry interface.
func (reg TransactionRegression) ID() string {
	return transactionEntryID
}

// String implements the database.Entry interface.
func (reg TransactionRegression) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("[%s] %s", reg.ID(), filepath.Base(reg.Script)))
	if reg.Notes != "" {
		s.WriteString(fmt.Sprintf(" [%s]", reg.Notes))
	}
	return s.String()
}

// SetKey implements the database.Entry interface.
func (reg *TransactionRegression) SetKey(key int) {
	reg.key = key
}

// GetKey implements the database.Entry interface.
func (reg TransactionRegression) GetKey() int {
	return reg.key
}

// Serialise implements the database.Entry interface.
func (reg TransactionRegression) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{
			reg.Script,
			reg.Notes,
			reg.digest,
		},
		nil
}

// CleanUp implements the database.Entry interface.
func (reg TransactionRegression) CleanUp() error {
	err := os.Remove(reg.Script)
	if _, ok := err.(*os.PathError); ok {
		return nil
	}
	return err
}

// regress implements the regression.Regressor interface.
func (reg *TransactionRegression) regress(newRegression bool, output io.Writer, msg string) (bool, error) {
	output.Write([]byte(msg))

	scr, err := harness.LoadScript(reg.Script)
	if err != nil {
		return false, err
	}

	// the digest stored in the database entry is the authority, not any
	// expectation written into the script itself
	scr.Digest = ""

	dig, err := harness.Verify(io.Discard, scr)
	if err != nil {
		return false, err
	}

	if newRegression {
		reg.digest = dig
		return true, nil
	}

	return dig == reg.digest, nil
}
