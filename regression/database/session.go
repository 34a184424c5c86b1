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

package database

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
)

const (
	fieldSep = ","
	entrySep = "\n"
)

const (
	leaderFieldKey int = iota
	leaderFieldID
	numLeaderFields
)

// arbitrary limit on the number of entries in a database.
const maxEntries = 1000

// Activity states what the caller intends to do with the session.
type Activity int

// List of valid Activity values.
const (
	ActivityReading Activity = iota
	ActivityCreating
	ActivityModifying
)

// Session represents an open database.
type Session struct {
	activity Activity
	dbfile   *os.File

	entries map[int]Entry

	// sorted list of keys. used when listing entries and when writing them
	// back to disk, keeping the file in a stable order
	keys []int

	entryTypes map[string]Deserialiser
}

// StartSession opens the database at the given path. The init function is
// called once the file is open and before any entries are read, giving the
// caller the chance to register entry types with AddEntryType().
func StartSession(path string, activity Activity, init func(*Session) error) (*Session, error) {
	db := &Session{
		activity:   activity,
		entryTypes: make(map[string]Deserialiser),
	}

	var flags int
	switch activity {
	case ActivityReading:
		flags = os.O_RDONLY
	case ActivityCreating:
		flags = os.O_RDWR | os.O_CREATE
	case ActivityModifying:
		flags = os.O_RDWR
	}

	var err error
	db.dbfile, err = os.OpenFile(path, flags, 0600)
	if err != nil {
		return nil, curated.Errorf("database: %v", err)
	}

	// from here on, closing of db.dbfile requires a call to EndSession()

	if init != nil {
		if err := init(db); err != nil {
			db.dbfile.Close()
			return nil, err
		}
	}

	if err := db.readDBFile(); err != nil {
		db.dbfile.Close()
		return nil, err
	}

	return db, nil
}

// AddEntryType registers a deserialiser for an entry type. Reading a
// database that contains an unregistered entry type is an error.
func (db *Session) AddEntryType(id string, des Deserialiser) error {
	if _, ok := db.entryTypes[id]; ok {
		return curated.Errorf("database: entry type already registered (%s)", id)
	}
	db.entryTypes[id] = des
	return nil
}

// EndSession closes the database. Changes made during the session are
// written to disk only if commitChanges is true.
func (db *Session) EndSession(commitChanges bool) error {
	if db.dbfile == nil {
		return curated.Errorf("database: session already ended")
	}

	if commitChanges {
		if db.activity == ActivityReading {
			return curated.Errorf("database: cannot commit changes to a reading session")
		}

		if err := db.dbfile.Truncate(0); err != nil {
			return curated.Errorf("database: %v", err)
		}
		if _, err := db.dbfile.Seek(0, io.SeekStart); err != nil {
			return curated.Errorf("database: %v", err)
		}

		for _, key := range db.keys {
			ser, err := db.entries[key].Serialise()
			if err != nil {
				return curated.Errorf("database: %v", err)
			}

			s := strings.Builder{}
			s.WriteString(recordHeader(db.entries[key]))

			for _, f := range ser {
				// a field containing the separator would split into two on
				// the next read
				if strings.Contains(f, fieldSep) {
					return curated.Errorf("database: field contains the field separator (%s)", f)
				}
				s.WriteString(fieldSep)
				s.WriteString(f)
			}

			s.WriteString(entrySep)

			if _, err := db.dbfile.WriteString(s.String()); err != nil {
				return curated.Errorf("database: %v", err)
			}
		}
	}

	err := db.dbfile.Close()
	db.dbfile = nil
	if err != nil {
		return curated.Errorf("database: %v", err)
	}

	return nil
}

// the leader fields common to every entry.
func recordHeader(ent Entry) string {
	return fmt.Sprintf("%03d%s%s", ent.GetKey(), fieldSep, ent.ID())
}

func (db *Session) readDBFile() error {
	// clobbers the contents of db.entries
	db.entries = make(map[int]Entry, len(db.entries))
	db.keys = db.keys[:0]

	// make sure we're at the beginning of the file
	if _, err := db.dbfile.Seek(0, io.SeekStart); err != nil {
		return curated.Errorf("database: %v", err)
	}

	buffer, err := io.ReadAll(db.dbfile)
	if err != nil {
		return curated.Errorf("database: %v", err)
	}

	lines := strings.Split(string(buffer), entrySep)

	for i := 0; i < len(lines); i++ {
		lines[i] = strings.TrimSpace(lines[i])
		if len(lines[i]) == 0 {
			continue
		}

		fields := strings.SplitN(lines[i], fieldSep, numLeaderFields+1)
		if len(fields) < numLeaderFields {
			return curated.Errorf("database: malformed entry at line %d", i+1)
		}

		key, err := strconv.Atoi(fields[leaderFieldKey])
		if err != nil {
			return curated.Errorf("database: invalid key [%s] at line %d", fields[leaderFieldKey], i+1)
		}

		if _, ok := db.entries[key]; ok {
			return curated.Errorf("database: duplicate key [%03d] at line %d", key, i+1)
		}

		des, ok := db.entryTypes[fields[leaderFieldID]]
		if !ok {
			return curated.Errorf("database: unrecognised entry type [%s] at line %d", fields[leaderFieldID], i+1)
		}

		var ser SerialisedEntry
		if len(fields) > numLeaderFields {
			ser = strings.Split(fields[numLeaderFields], fieldSep)
		}

		ent, err := des(key, ser)
		if err != nil {
			return err
		}

		db.entries[key] = ent
		db.keys = append(db.keys, key)
	}

	sort.Ints(db.keys)

	return nil
}
