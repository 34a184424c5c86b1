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

// Package prefs facilitates the setting and persistence of preference values.
// Preference values are added to a Disk instance with the Add() function.
// Subsequent calls to Save() and Load() will write and read values to the
// file the Disk instance was created with.
//
// Many Disk instances can use the same file. Saving through one instance will
// not clobber values registered with another.
package prefs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jetsetilly/gopherwire/curated"
	"github.com/jetsetilly/gopherwire/logger"
)

// DefaultPrefsFile is the default filename for the global preferences file.
const DefaultPrefsFile = "gopherwire.prefs"

// WarningBoilerPlate is the string that appears at the top of the prefs file.
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// Sentinal errors.
const (
	NoPrefsFile = "no prefs file (%s)"
)

// the string that separates a key from its value in the prefs file.
const keySep = " :: "

// Disk represents preference values as stored on disk.
type Disk struct {
	path    string
	entries map[string]pref
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	if strings.TrimSpace(path) == "" {
		return nil, curated.Errorf("prefs: invalid path (%s)", path)
	}
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

func (dsk *Disk) String() string {
	s := strings.Builder{}

	keys := make([]string, 0, len(dsk.entries))
	for key := range dsk.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s.WriteString(fmt.Sprintf("%s%s%v\n", key, keySep, dsk.entries[key]))
	}

	return s.String()
}

// Add preference value to the list of values to save/load from disk. The key
// must not contain the key separator string or any newline characters.
//
// If a value for the key was previously supplied on the command line then
// that value is applied to the preference immediately.
func (dsk *Disk) Add(key string, p pref) error {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, keySep) || strings.Contains(key, "\n") {
		return curated.Errorf("prefs: invalid key (%s)", key)
	}

	dsk.entries[key] = p

	// command line values take precedence over everything
	if ok, v := GetCommandLinePref(key); ok {
		return p.Set(v)
	}

	return nil
}

// Reset all registered preferences to their default values.
func (dsk *Disk) Reset() error {
	for _, p := range dsk.entries {
		if err := p.Reset(); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}
	return nil
}

// Load preference values from disk.
//
// If ignoreMissing is true then the NoPrefsFile error is suppressed. Useful
// on program startup, when the file may not have been created yet.
func (dsk *Disk) Load(ignoreMissing bool) error {
	f, err := os.Open(dsk.path)
	if err != nil {
		if os.IsNotExist(err) {
			if ignoreMissing {
				return nil
			}
			return curated.Errorf(NoPrefsFile, dsk.path)
		}
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// check validity of file by checking the first line
	scanner.Scan()
	if len(scanner.Text()) > 0 && scanner.Text() != WarningBoilerPlate {
		return curated.Errorf("prefs: not a prefs file (%s)", dsk.path)
	}

	for scanner.Scan() {
		kv := strings.SplitN(scanner.Text(), keySep, 2)
		if len(kv) != 2 || isDefunct(kv[0]) {
			continue
		}

		if p, ok := dsk.entries[kv[0]]; ok {
			// a value that can no longer be parsed is noted but does not
			// abort the load
			if err := p.Set(kv[1]); err != nil {
				logger.Logf(logger.Allow, "prefs", "%s: %v", kv[0], err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	return nil
}

// Save current preference values to disk.
//
// Key/value pairs in the file that have not been registered with this Disk
// instance are preserved.
func (dsk *Disk) Save() error {
	// gather existing entries from the file. keys not registered with this
	// instance must not be clobbered
	existing := make(map[string]string)

	f, err := os.Open(dsk.path)
	if err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			kv := strings.SplitN(scanner.Text(), keySep, 2)
			if len(kv) == 2 && !isDefunct(kv[0]) {
				existing[kv[0]] = kv[1]
			}
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	} else if !os.IsNotExist(err) {
		return curated.Errorf("prefs: %v", err)
	}

	// values registered with this instance take precedence
	for key, p := range dsk.entries {
		existing[key] = p.String()
	}

	keys := make([]string, 0, len(existing))
	for key := range existing {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	f, err = os.Create(dsk.path)
	if err != nil {
		return curated.Errorf("prefs: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err := io.WriteString(w, fmt.Sprintf("%s\n", WarningBoilerPlate)); err != nil {
		return curated.Errorf("prefs: %v", err)
	}

	for _, key := range keys {
		if _, err := io.WriteString(w, fmt.Sprintf("%s%s%s\n", key, keySep, existing[key])); err != nil {
			return curated.Errorf("prefs: %v", err)
		}
	}

	return nil
}
