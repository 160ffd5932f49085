package serialhelper

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tarm/serial"
	bugserial "go.bug.st/serial"
)

const (
	BackendTarm  = "tarm"
	BackendBugst = "bugst"
)

var Backends = []string{BackendTarm, BackendBugst}

// PollInterval is how long a single read on the port blocks when nothing arrives.
// Longer waits are built up by Reader.
const PollInterval = 100 * time.Millisecond

// Port is an open serial connection.
type Port interface {
	io.ReadWriteCloser
}

type Config struct {
	Name             string
	Baud             int
	Backend          string
	LockRetries      int
	LockWait         time.Duration
	SkipConsoleCheck bool
}

func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("no serial port given")
	}
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	switch c.Backend {
	case BackendTarm, BackendBugst, "":
	default:
		return fmt.Errorf("unknown serial backend '%s'", c.Backend)
	}
	if c.LockRetries < 0 {
		return fmt.Errorf("lock retries can't be negative")
	}
	return nil
}

// lockedPort holds the flock on the device for as long as the port is open.
type lockedPort struct {
	Port
	lock *os.File
}

func (p *lockedPort) Close() error {
	err := p.Port.Close()
	if releaseErr := ReleaseSerial(p.lock); err == nil {
		err = releaseErr
	}
	return err
}

// Open locks and opens the serial port. Any failure is returned as a *SerialUnavailableError.
func Open(c Config) (Port, error) {
	if err := c.Validate(); err != nil {
		return nil, WrapSerialError("bad serial config", err)
	}
	if !c.SkipConsoleCheck && SerialInUseFromTerminal(c.Name) {
		return nil, NewSerialUnavailableError(fmt.Sprintf("%s is in use by the terminal console", c.Name))
	}

	start := time.Now()
	lock, err := GetSerial(c.Name, c.LockRetries, c.LockWait)
	if err != nil {
		if _, ok := err.(*SerialUnavailableError); ok {
			return nil, err
		}
		return nil, WrapSerialError(fmt.Sprintf("failed to open %s", c.Name), err)
	}
	log.Debug("Serial lock took ", time.Since(start))

	var port Port
	switch c.Backend {
	case BackendBugst:
		port, err = openBugst(c)
	default:
		port, err = openTarm(c)
	}
	if err != nil {
		ReleaseSerial(lock)
		return nil, WrapSerialError(fmt.Sprintf("failed to open %s", c.Name), err)
	}
	return &lockedPort{Port: port, lock: lock}, nil
}

func openTarm(c Config) (Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Name,
		Baud:        c.Baud,
		ReadTimeout: PollInterval,
	})
	if err != nil {
		return nil, err
	}
	return port, nil
}

func openBugst(c Config) (Port, error) {
	port, err := bugserial.Open(c.Name, &bugserial.Mode{
		BaudRate: c.Baud,
		DataBits: 8,
		Parity:   bugserial.NoParity,
		StopBits: bugserial.OneStopBit,
	})
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(PollInterval); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}
