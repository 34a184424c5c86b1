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

package database_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jetsetilly/gopherwire/regression/database"
	"github.com/jetsetilly/gopherwire/test"
)

// testEntry is a minimal implementation of the database.Entry interface.
type testEntry struct {
	key   int
	value string
}

const testEntryID = "test"

func deserialiseTestEntry(key int, ser database.SerialisedEntry) (database.Entry, error) {
	ent := &testEntry{key: key}
	if len(ser) != 1 {
		return nil, fmt.Errorf("test: wrong number of fields")
	}
	ent.value = ser[0]
	return ent, nil
}

func (ent testEntry) ID() string {
	return testEntryID
}

func (ent testEntry) String() string {
	return fmt.Sprintf("[%s] %s", testEntryID, ent.value)
}

func (ent *testEntry) SetKey(key int) {
	ent.key = key
}

func (ent testEntry) GetKey() int {
	return ent.key
}

func (ent testEntry) Serialise() (database.SerialisedEntry, error) {
	return database.SerialisedEntry{ent.value}, nil
}

func (ent testEntry) CleanUp() error {
	return nil
}

func registerTestEntry(db *database.Session) error {
	return db.AddEntryType(testEntryID, deserialiseTestEntry)
}

func TestSessionRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db")

	// create a database with three entries
	db, err := database.StartSession(dbPath, database.ActivityCreating, registerTestEntry)
	test.DemandSuccess(t, err)

	for _, v := range []string{"foo", "bar", "baz"} {
		err = db.Add(&testEntry{value: v})
		test.ExpectSuccess(t, err)
	}

	err = db.EndSession(true)
	test.ExpectSuccess(t, err)

	// read the database back
	db, err = database.StartSession(dbPath, database.ActivityReading, registerTestEntry)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 3)

	ent, err := db.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ent.String(), "[test] bar")

	s := &strings.Builder{}
	err = db.List(s)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s.String(), "000 [test] foo\n001 [test] bar\n002 [test] baz\n")

	selected := 0
	err = db.Select(testEntryID, func(ent database.Entry) (bool, error) {
		selected++
		return true, nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, selected, 3)

	err = db.EndSession(false)
	test.ExpectSuccess(t, err)

	// delete the middle entry
	db, err = database.StartSession(dbPath, database.ActivityModifying, registerTestEntry)
	test.DemandSuccess(t, err)

	ent, err = db.Get(1)
	test.ExpectSuccess(t, err)
	err = db.Delete(ent)
	test.ExpectSuccess(t, err)

	err = db.EndSession(true)
	test.ExpectSuccess(t, err)

	db, err = database.StartSession(dbPath, database.ActivityReading, registerTestEntry)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, db.NumEntries(), 2)
	err = db.EndSession(false)
	test.ExpectSuccess(t, err)

	// a new entry reuses the freed key
	db, err = database.StartSession(dbPath, database.ActivityModifying, registerTestEntry)
	test.DemandSuccess(t, err)

	add := &testEntry{value: "qux"}
	err = db.Add(add)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, add.GetKey(), 1)

	err = db.EndSession(true)
	test.ExpectSuccess(t, err)
}

func TestSessionErrors(t *testing.T) {
	tmp := t.TempDir()

	// reading a database that does not exist
	_, err := database.StartSession(filepath.Join(tmp, "missing"), database.ActivityReading, registerTestEntry)
	test.ExpectFailure(t, err)

	// a database containing an unregistered entry type
	unknownPath := filepath.Join(tmp, "unknown")
	err = os.WriteFile(unknownPath, []byte("000,unknown,foo\n"), 0600)
	test.DemandSuccess(t, err)

	_, err = database.StartSession(unknownPath, database.ActivityReading, registerTestEntry)
	test.ExpectFailure(t, err)

	// committing changes to a reading session
	dbPath := filepath.Join(tmp, "db")
	db, err := database.StartSession(dbPath, database.ActivityCreating, registerTestEntry)
	test.DemandSuccess(t, err)
	err = db.EndSession(true)
	test.ExpectSuccess(t, err)

	db, err = database.StartSession(dbPath, database.ActivityReading, registerTestEntry)
	test.DemandSuccess(t, err)
	err = db.EndSession(true)
	test.ExpectFailure(t, err)

	// an entry field containing the field separator cannot be serialised
	db, err = database.StartSession(dbPath, database.ActivityModifying, registerTestEntry)
	test.DemandSuccess(t, err)
	err = db.Add(&testEntry{value: "a,b"})
	test.ExpectSuccess(t, err)
	err = db.EndSession(true)
	test.ExpectFailure(t, err)
}
