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
	"sort"

	"github.com/jetsetilly/gopherwire/curated"
)

// NumEntries returns the number of entries in the database.
func (db *Session) NumEntries() int {
	return len(db.entries)
}

// Add an entry to the database. The key field of the entry is set as a
// result of this function.
func (db *Session) Add(ent Entry) error {
	if db.activity == ActivityReading {
		return curated.Errorf("database: cannot add to a reading session")
	}

	// find lowest unused key. keys freed by deleted entries are reused
	key := -1
	for i := 0; i < maxEntries; i++ {
		if _, ok := db.entries[i]; !ok {
			key = i
			break // for loop
		}
	}
	if key == -1 {
		return curated.Errorf("database: maximum of %d entries exceeded", maxEntries)
	}

	ent.SetKey(key)
	db.entries[key] = ent
	db.keys = append(db.keys, key)
	sort.Ints(db.keys)

	return nil
}

// Get the entry with the given key.
func (db *Session) Get(key int) (Entry, error) {
	ent, ok := db.entries[key]
	if !ok {
		return nil, curated.Errorf("database: key not found (%03d)", key)
	}
	return ent, nil
}

// Delete an entry from the database. The entry's CleanUp() function is
// called once it has been removed.
func (db *Session) Delete(ent Entry) error {
	if db.activity == ActivityReading {
		return curated.Errorf("database: cannot delete from a reading session")
	}

	key := ent.GetKey()
	if _, ok := db.entries[key]; !ok {
		return curated.Errorf("database: key not found (%03d)", key)
	}

	delete(db.entries, key)

	for i := range db.keys {
		if db.keys[i] == key {
			db.keys = append(db.keys[:i], db.keys[i+1:]...)
			break // for loop
		}
	}

	if err := ent.CleanUp(); err != nil {
		return curated.Errorf("database: %v", err)
	}

	return nil
}

// List the entries in the database in key order.
func (db *Session) List(output io.Writer) error {
	for _, key := range db.keys {
		s := fmt.Sprintf("%03d %s\n", key, db.entries[key].String())
		if _, err := output.Write([]byte(s)); err != nil {
			return curated.Errorf("database: %v", err)
		}
	}
	return nil
}

// Select entries of the given type, in key order. An entryID of the empty
// string selects every entry. The onSelect function is called for each
// selected entry; returning false ends the selection early.
func (db *Session) Select(entryID string, onSelect func(Entry) (bool, error)) error {
	for _, key := range db.keys {
		ent := db.entries[key]
		if entryID != "" && ent.ID() != entryID {
			continue
		}

		cont, err := onSelect(ent)
		if err != nil {
			return err
		}
		if !cont {
			break // for loop
		}
	}

	return nil
}
