/*
trinket-test - Smoke test of the serial link to the Trinket
Copyright (C) 2024, The Cacophony Project

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package trinkettest

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/TheCacophonyProject/trinket-test/internal/logging"
	"github.com/TheCacophonyProject/trinket-test/powerpin"
	"github.com/TheCacophonyProject/trinket-test/serialhelper"
	arg "github.com/alexflint/go-arg"
)

var (
	version = "<not set>"
	log     = logging.NewLogger("info")
)

type Args struct {
	Port             string        `arg:"--port" help:"Serial port the Trinket is connected to"`
	Baud             int           `arg:"--baud" help:"Serial baud rate"`
	Timeout          time.Duration `arg:"--timeout" help:"How long to wait for each response"`
	SerialBackend    string        `arg:"--serial-backend" help:"Serial library to use (tarm, bugst)"`
	SkipConsoleCheck bool          `arg:"--skip-console-check" help:"Don't refuse a port that is used as the login console"`
	LockRetries      int           `arg:"--lock-retries" help:"Times to retry getting the lock on the serial port"`
	PowerPin         string        `arg:"--power-pin" help:"GPIO pin that powers the Trinket"`
	GPIOBackend      string        `arg:"--gpio-backend" help:"GPIO library to use (periph, cdev)"`
	GPIOChip         string        `arg:"--gpio-chip" help:"GPIO chip, only used by the cdev backend"`
	Banner           string        `arg:"--banner" help:"Startup banner expected from the Trinket, without the newline"`
	Send             []string      `arg:"--send,separate" help:"Test string to send, can be repeated. Replaces the default test strings"`
	ReadMode         string        `arg:"--read-mode" help:"How a response ends: line (at a newline) or pause (after a quiet gap)"`
	Pause            time.Duration `arg:"--pause" help:"Quiet gap that ends a response in pause read mode"`
	ReportEvent      bool          `arg:"--report-event" help:"Queue an event with the test result"`
	logging.LogArgs
}

func (Args) Version() string {
	return version
}

var defaultArgs = Args{
	Port:          "/dev/serial0",
	Baud:          115200,
	Timeout:       10 * time.Second,
	SerialBackend: serialhelper.BackendTarm,
	LockRetries:   3,
	PowerPin:      "GPIO27",
	GPIOBackend:   powerpin.BackendPeriph,
	GPIOChip:      "gpiochip0",
	Banner:        "Trinket started",
	ReadMode:      ReadModeLine,
	Pause:         3 * time.Second,
}

var readModes = []string{ReadModeLine, ReadModePause}

func (a Args) validate() error {
	if !slices.Contains(readModes, a.ReadMode) {
		return fmt.Errorf("invalid read mode '%s'. Should be one of '%s'", a.ReadMode, strings.Join(readModes, "', '"))
	}
	if !slices.Contains(serialhelper.Backends, a.SerialBackend) {
		return fmt.Errorf("invalid serial backend '%s'. Should be one of '%s'", a.SerialBackend, strings.Join(serialhelper.Backends, "', '"))
	}
	if !slices.Contains(powerpin.Backends, a.GPIOBackend) {
		return fmt.Errorf("invalid GPIO backend '%s'. Should be one of '%s'", a.GPIOBackend, strings.Join(powerpin.Backends, "', '"))
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if a.ReadMode == ReadModePause && a.Pause <= 0 {
		return fmt.Errorf("pause must be positive")
	}
	return nil
}

func procArgs(input []string) (Args, error) {
	args := defaultArgs

	parser, err := arg.NewParser(arg.Config{}, &args)
	if err != nil {
		return Args{}, err
	}
	err = parser.Parse(input)
	if errors.Is(err, arg.ErrHelp) {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if errors.Is(err, arg.ErrVersion) {
		fmt.Println(version)
		os.Exit(0)
	}
	if err != nil {
		return args, err
	}
	args.ReadMode = strings.ToLower(args.ReadMode)
	args.SerialBackend = strings.ToLower(args.SerialBackend)
	args.GPIOBackend = strings.ToLower(args.GPIOBackend)
	return args, args.validate()
}

func newTester(args Args) *Tester {
	testStrings := args.Send
	if len(testStrings) == 0 {
		testStrings = defaultTestStrings
	}
	return &Tester{
		PortName: args.Port,
		OpenPin: func() (powerpin.Pin, error) {
			return powerpin.Open(args.GPIOBackend, args.GPIOChip, args.PowerPin)
		},
		OpenPort: func() (serialhelper.Port, error) {
			return serialhelper.Open(serialhelper.Config{
				Name:             args.Port,
				Baud:             args.Baud,
				Backend:          args.SerialBackend,
				LockRetries:      args.LockRetries,
				LockWait:         time.Second,
				SkipConsoleCheck: args.SkipConsoleCheck,
			})
		},
		Banner:      args.Banner,
		TestStrings: testStrings,
		ReadMode:    args.ReadMode,
		Timeout:     args.Timeout,
		Pause:       args.Pause,
	}
}

func Run(inputArgs []string, ver string) error {
	version = ver
	args, err := procArgs(inputArgs)
	if err != nil {
		return fmt.Errorf("failed to parse args: %v", err)
	}

	log = logging.NewLogger(args.LogLevel)

	log.Printf("Running version: %s", version)

	report, err := newTester(args).Run()
	if args.ReportEvent {
		reportEvent(report, err)
	}
	if err := handleTestError(args.Port, err); err != nil {
		return err
	}

	log.Println("Test finished")
	return nil
}

// handleTestError reports GPIO and serial failures and swallows them.
// Anything else is passed back up.
func handleTestError(port string, err error) error {
	if err == nil {
		return nil
	}
	var gpioErr *powerpin.UnavailableError
	if errors.As(err, &gpioErr) {
		log.Errorf("GPIO not available: %v", err)
		return nil
	}
	var serialErr *serialhelper.SerialUnavailableError
	if errors.As(err, &serialErr) {
		log.Errorf("Failed at %s: %v", port, err)
		return nil
	}
	return err
}
