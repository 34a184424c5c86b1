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

// Package database is a very simple flat-file database. Entries are stored
// one per line, fields separated by commas. The leader fields of every line
// are the entry key and the entry type; the remaining fields belong to the
// entry type itself.
//
// A database is used through a Session, started with the StartSession()
// function. The Activity argument declares what the caller intends to do
// with the session and limits which operations are allowed. Entry types are
// registered during session initialisation with AddEntryType(); reading a
// database containing an unregistered type is an error.
//
// Changes to the database are not written until the session ends with a
// call to EndSession() with the commitChanges argument set to true.
package database
