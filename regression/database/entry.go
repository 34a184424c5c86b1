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

// Entry represents one record in the database.
type Entry interface {
	// ID returns the string used to identify the entry type in the database
	ID() string

	// String implements the Stringer interface
	String() string

	// SetKey sets the key value for the entry
	SetKey(key int)

	// GetKey returns the key assigned to the entry
	GetKey() int

	// Serialise converts the entry into a sequence of fields
	Serialise() (SerialisedEntry, error)

	// CleanUp is called when the entry is removed from the database
	CleanUp() error
}

// SerialisedEntry is the outward form of an entry, a sequence of fields. No
// field may contain the field separator.
type SerialisedEntry []string

// Deserialiser instantiates an entry from its serialised form.
type Deserialiser func(key int, ser SerialisedEntry) (Entry, error)
