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

// Package regression facilitates the regression testing of the emulation.
// By adding test results to a database the tests can be rerun automatically
// and checked for consistancy.
//
// There is one test type, the transaction test. A transaction test drives
// the machine with a harness script and stores the digest of the resulting
// bus activity. Rerunning the test fails if the bus activity has changed in
// any way.
//
// The script file named when a test is added is copied into the regression
// directory, so the test keeps working even if the original file is later
// moved or edited. Deleting the test removes the copy.
package regression
