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

package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/jetsetilly/gopherwire/hardware/bus"
)

// Bus is an implementation of the bus.Tracer interface. It generates a SHA-1
// value of the line activity every transaction. The line levels are not
// displayed or stored anywhere.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
type Bus struct {
	digest      [sha1.Size]byte
	activity    []byte
	transaction int
}

// bit positions of the two lines in each activity byte.
const (
	sdaBit = 0b01
	sclBit = 0b10
)

// NewBus initialises a new instance of the Bus digest and attaches it to the
// supplied bus.
func NewBus(b *bus.Bus) *Bus {
	dig := &Bus{}

	// the head of the activity data is reserved for the previous
	// transaction's digest value
	dig.activity = make([]byte, sha1.Size)

	// register ourselves as a bus tracer
	b.AddTracer(dig)

	return dig
}

// Hash implements the digest.Digest interface.
func (dig *Bus) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Bus) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.activity = dig.activity[:sha1.Size]
	copy(dig.activity, dig.digest[:])
}

// Tick implements the bus.Tracer interface.
func (dig *Bus) Tick(lv bus.Levels) error {
	// chain fingerprints at every transaction boundary by copying the value
	// of the last fingerprint to the head of the activity data
	if lv.Coords.Transaction != dig.transaction {
		dig.digest = sha1.Sum(dig.activity)
		dig.activity = dig.activity[:sha1.Size]
		copy(dig.activity, dig.digest[:])
		dig.transaction = lv.Coords.Transaction
	}

	var b byte
	if lv.SCL {
		b |= sclBit
	}
	if lv.SDA {
		b |= sdaBit
	}
	dig.activity = append(dig.activity, b)

	return nil
}
