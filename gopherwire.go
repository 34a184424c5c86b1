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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jetsetilly/gopherwire/capture"
	"github.com/jetsetilly/gopherwire/environment"
	"github.com/jetsetilly/gopherwire/harness"
	"github.com/jetsetilly/gopherwire/hardware"
	"github.com/jetsetilly/gopherwire/hardware/preferences"
	"github.com/jetsetilly/gopherwire/logger"
	"github.com/jetsetilly/gopherwire/modalflag"
	"github.com/jetsetilly/gopherwire/monitor"
	"github.com/jetsetilly/gopherwire/monitor/terminal"
	"github.com/jetsetilly/gopherwire/monitor/terminal/colorterm"
	"github.com/jetsetilly/gopherwire/monitor/terminal/plainterm"
	"github.com/jetsetilly/gopherwire/performance"
	"github.com/jetsetilly/gopherwire/regression"
	"github.com/jetsetilly/gopherwire/statsview"
	"github.com/jetsetilly/gopherwire/version"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.NewMode()
	md.AddSubModes("RUN", "MONITOR", "REPLAY", "VERIFY", "PERFORMANCE", "REGRESS", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		fallthrough

	case "MONITOR":
		err = monitorMode(md)

	case "REPLAY":
		err = replay(md)

	case "VERIFY":
		err = verify(md)

	case "PERFORMANCE":
		err = perform(md)

	case "REGRESS":
		err = regress(md)

	case "VERSION":
		err = showVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		os.Exit(20)
	}
}

func monitorMode(md *modalflag.Modes) error {
	md.NewMode()

	termType := md.AddString("term", "COLOR", "terminal type to use in monitor mode: COLOR, PLAIN")
	divider := md.AddInt("divider", 0, "clock divider for the session (0 uses the preference value)")
	stats := md.AddBool("statsview", false, "run the statsview HTTP server")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(md.Output)
		} else {
			fmt.Printf("! statsview is not available in this build\n")
		}
	}

	var term terminal.Terminal

	switch strings.ToUpper(*termType) {
	default:
		fmt.Printf("! unknown terminal type (%s) defaulting to plain\n", *termType)
		fallthrough
	case "PLAIN":
		term = &plainterm.PlainTerminal{}
	case "COLOR":
		term = &colorterm.ColorTerminal{}
	}

	switch len(md.RemainingArgs()) {
	case 0:
		m, err := hardware.NewMachine(environment.MainEmulation, nil)
		if err != nil {
			return err
		}

		if *divider > 0 {
			err = m.Env.Prefs.Divider.Set(*divider)
			if err != nil {
				return err
			}
		}

		mon, err := monitor.NewMonitor(m, term)
		if err != nil {
			return err
		}

		err = mon.Run()
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("no additional arguments required for %s mode", md)
	}

	return nil
}

func replay(md *modalflag.Modes) error {
	md.NewMode()

	address := md.AddString("address", "0x50", "device address to listen for")
	wavFile := md.AddString("wav", "", "export the loaded capture to a wav file")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	addr, err := strconv.ParseUint(*address, 0, 8)
	if err != nil || addr > 0x7f {
		return fmt.Errorf("not a valid device address (%s)", *address)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("capture file required for %s mode", md)
	case 1:
		cp, err := capture.Load(md.GetArg(0))
		if err != nil {
			return err
		}

		fmt.Fprintf(md.Output, "%s\n", cp)

		// export the capture if the wav argument has been specified
		if *wavFile != "" {
			err = cp.Export(*wavFile)
			if err != nil {
				return err
			}
		}

		written, err := cp.Replay(uint8(addr))
		if err != nil {
			return err
		}

		if len(written) == 0 {
			fmt.Fprintf(md.Output, "no writes to %#02x\n", uint8(addr))
		}
		for _, v := range written {
			fmt.Fprintf(md.Output, "%#02x <- %#03x\n", uint8(addr), v)
		}
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func verify(md *modalflag.Modes) error {
	md.NewMode()

	log := md.AddBool("log", false, "echo debugging log to stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(os.Stdout, true)
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("verification script required for %s mode", md)
	case 1:
		_, err := harness.VerifyFile(md.Output, md.GetArg(0))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("too many arguments for %s mode", md)
	}

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	divider := md.AddInt("divider", preferences.DefaultDivider, "clock divider for the master engine")
	duration := md.AddString("duration", "5s", "run duration (note: there is a 2s overhead)")
	profile := md.AddString("profile", "none", "run through profiler: NONE, CPU, MEM, TRACE, ALL")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	prof, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		err := performance.Check(md.Output, prof, *divider, *duration)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("no additional arguments required for %s mode", md)
	}

	return nil
}

type yesReader struct{}

func (*yesReader) Read(p []byte) (n int, err error) {
	p[0] = 'y'
	return 1, nil
}

func regress(md *modalflag.Modes) error {
	md.NewMode()
	md.AddSubModes("RUN", "LIST", "DELETE", "ADD")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch md.Mode() {
	case "RUN":
		md.NewMode()

		verbose := md.AddBool("verbose", false, "output more detail (eg. error messages)")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		err = regression.RegressRun(md.Output, *verbose, md.RemainingArgs())
		if err != nil {
			return err
		}

	case "LIST":
		md.NewMode()

		// no additional arguments

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			err := regression.RegressList(md.Output)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("no additional arguments required for %s mode", md)
		}

	case "DELETE":
		md.NewMode()

		answerYes := md.AddBool("yes", false, "answer yes to confirmation")

		p, err := md.Parse()
		if err != nil || p != modalflag.ParseContinue {
			return err
		}

		switch len(md.RemainingArgs()) {
		case 0:
			return fmt.Errorf("database key required for %s mode", md)
		case 1:

			// use stdin for confirmation unless "yes" flag has been sent
			var confirmation io.Reader
			if *answerYes {
				confirmation = &yesReader{}
			} else {
				confirmation = os.Stdin
			}

			err := regression.RegressDelete(md.Output, confirmation, md.GetArg(0))
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("only one entry can be deleted at at time")
		}

	case "ADD":
		return regressAdd(md)
	}

	return nil
}

func regressAdd(md *modalflag.Modes) error {
	md.NewMode()

	notes := md.AddString("notes", "", "additional annotation for the database")
	log := md.AddBool("log", false, "echo debugging log to stdout")

	md.AdditionalHelp(
		`The regression test to be added is described by a verification script. The script
is run once to establish the expected bus activity digest and a copy of the script is
archived alongside the database.

The -log flag instructs the program to echo the log to the console. Note that asking
for log output will suppress regression progress meters.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(os.Stdout, true)
		md.Output = &nopWriter{}
	} else {
		logger.SetEcho(nil, false)
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return fmt.Errorf("verification script required for %s mode", md)
	case 1:
		reg, err := regression.NewTransactionRegression(md.GetArg(0), *notes)
		if err != nil {
			return err
		}

		err = regression.RegressAdd(md.Output, reg)
		if err != nil {
			// using carriage return (without newline) at beginning of error
			// message because we want to overwrite the last output from
			// RegressAdd()
			return fmt.Errorf("\rerror adding regression test: %v", err)
		}
	default:
		return fmt.Errorf("regression tests can only be added one at a time")
	}

	return nil
}

func showVersion(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		ver, rev, release := version.Version()
		fmt.Fprintf(md.Output, "%s %s\n", version.ApplicationName, ver)
		if !release {
			fmt.Fprintf(md.Output, "%s\n", rev)
		}
	default:
		return fmt.Errorf("no additional arguments required for %s mode", md)
	}

	return nil
}

// nopWriter is an empty writer.
type nopWriter struct{}

func (*nopWriter) Write(p []byte) (n int, err error) {
	return 0, nil
}
