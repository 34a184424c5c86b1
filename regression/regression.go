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
	"slices"
	"sort"
	"strconv"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/monitor/terminal/colorterm/easyterm/ansi"
	"github.com/jetsetilly/gopherwire/regression/database"
	"github.com/jetsetilly/gopherwire/resources"
)

// the location of the regression database and its support files, relative to
// the resource path.
const (
	regressionPath    = "regression"
	regressionDBFile  = "db"
	regressionScripts = "scripts"
)

// Regressor is the generic entry in the regression database.
type Regressor interface {
	database.Entry

	// perform the regression test for the regression type. the newRegression
	// flag causes the test to record its result rather than check it.
	//
	// message is the string that is to be printed during the regression
	regress(newRegression bool, output io.Writer, message string) (bool, error)
}

// when starting a database session we need to register what entries we will
// find in the database.
func initDBSession(db *database.Session) error {
	return db.AddEntryType(transactionEntryID, deserialiseTransactionEntry)
}

func dbPath() (string, error) {
	return resources.JoinPath(regressionPath, regressionDBFile)
}

// RegressList displays all entries in the database.
func RegressList(output io.Writer) error {
	if output == nil {
		return curated.Errorf("regression: output is required")
	}

	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityReading, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	return db.List(output)
}

// RegressAdd adds a new test to the database. The test is run before it is
// added and the result stored as the expectation for future runs.
func RegressAdd(output io.Writer, reg Regressor) error {
	if output == nil {
		return curated.Errorf("regression: output is required")
	}

	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityCreating, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	msg := fmt.Sprintf("adding: %s", reg)

	ok, err := reg.regress(true, output, msg)
	if err != nil {
		return err
	}
	if !ok {
		return curated.Errorf("regression: new test failed")
	}

	output.Write([]byte(ansi.ClearLine))
	output.Write([]byte(fmt.Sprintf("\radded: %s\n", reg)))

	return db.Add(reg)
}

// RegressDelete removes a test from the database. The confirmation reader is
// used to ask the user whether they really mean it.
func RegressDelete(output io.Writer, confirmation io.Reader, key string) error {
	if output == nil {
		return curated.Errorf("regression: output is required")
	}

	v, err := strconv.Atoi(key)
	if err != nil {
		return curated.Errorf("regression: invalid key (%s)", key)
	}

	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityModifying, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(true)

	ent, err := db.Get(v)
	if err != nil {
		return err
	}

	output.Write([]byte(fmt.Sprintf("%s\ndelete? (y/n): ", ent)))

	confirm := make([]byte, 32)
	if _, err := confirmation.Read(confirm); err != nil {
		return curated.Errorf("regression: %v", err)
	}

	if confirm[0] == 'y' || confirm[0] == 'Y' {
		if err := db.Delete(ent); err != nil {
			return err
		}
		output.Write([]byte(fmt.Sprintf("deleted test #%s from the regression database\n", key)))
	}

	return nil
}

// RegressRun runs the tests in the database. An empty filterKeys list runs
// every test. The pseudo-key "FAILS" stands for every key that failed the
// last time it was run.
func RegressRun(output io.Writer, verbose bool, filterKeys []string) error {
	if output == nil {
		return curated.Errorf("regression: output is required")
	}

	p, err := dbPath()
	if err != nil {
		return curated.Errorf("regression: %v", err)
	}

	db, err := database.StartSession(p, database.ActivityReading, initDBSession)
	if err != nil {
		return err
	}
	defer db.EndSession(false)

	filterKeys, err = addFailsToKeys(filterKeys)
	if err != nil {
		if curated.Is(err, noPreviousFails) {
			output.Write([]byte(fmt.Sprintf("%v\n", err)))
			return nil
		}
		return err
	}

	// make sure any supplied keys list is in numeric order
	keysV := make([]int, 0, len(filterKeys))
	for _, k := range filterKeys {
		v, err := strconv.Atoi(k)
		if err != nil {
			return curated.Errorf("regression: invalid key (%s)", k)
		}
		keysV = append(keysV, v)
	}
	sort.Ints(keysV)

	numSucceed := 0
	numFail := 0
	numError := 0
	numSkipped := 0

	defer func() {
		output.Write([]byte(fmt.Sprintf("regression tests: %d succeed, %d fail, %d skipped", numSucceed, numFail, numSkipped)))
		if numError > 0 {
			output.Write([]byte(" [with errors]"))
		}
		output.Write([]byte("\n"))
	}()

	// keys that fail are remembered for the next run
	failKeys := make([]string, 0)
	defer func() {
		if err := saveFails(failKeys); err != nil {
			output.Write([]byte(fmt.Sprintf("%v\n", err)))
		}
	}()

	onSelect := func(ent database.Entry) (bool, error) {
		if len(keysV) > 0 && !slices.Contains(keysV, ent.GetKey()) {
			numSkipped++
			return true, nil
		}

		// database entry should also satisfy the Regressor interface
		reg, ok := ent.(Regressor)
		if !ok {
			return false, curated.Errorf("regression: database entry does not satisfy the Regressor interface")
		}

		// run regress() function with message. message does not have a
		// trailing newline
		msg := fmt.Sprintf("running: %s", reg)
		ok, err := reg.regress(false, output, msg)

		// once regress() has completed we clear the line ready for the
		// completion message
		output.Write([]byte(ansi.ClearLine))

		if err != nil {
			numError++
			output.Write([]byte(fmt.Sprintf("\r error: %s\n", reg)))
			if verbose {
				output.Write([]byte(fmt.Sprintf("  %v\n", err)))
			}
			failKeys = append(failKeys, fmt.Sprintf("%d", ent.GetKey()))
		} else if !ok {
			numFail++
			output.Write([]byte(fmt.Sprintf("\rfailure: %s\n", reg)))
			failKeys = append(failKeys, fmt.Sprintf("%d", ent.GetKey()))
		} else {
			numSucceed++
			output.Write([]byte(fmt.Sprintf("\rsucceed: %s\n", reg)))
		}

		return true, nil
	}

	return db.Select("", onSelect)
}
