// Package powerpin drives the GPIO line that switches power to the Trinket.
package powerpin

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	BackendPeriph = "periph"
	BackendCdev   = "cdev"
)

var Backends = []string{BackendPeriph, BackendCdev}

// Pin is a power enable output.
// Release returns the line to a floating input and frees whatever the backend holds,
// it should be called once the pin is no longer needed.
type Pin interface {
	On() error
	Off() error
	Release() error
}

// UnavailableError is returned when GPIO can't be used on this host, for example
// when the GPIO drivers fail to load or the pin doesn't exist.
type UnavailableError struct {
	msg string
	err error
}

func (e *UnavailableError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *UnavailableError) Unwrap() error {
	return e.err
}

func NewUnavailableError(msg string, err error) error {
	return &UnavailableError{msg: msg, err: err}
}

// Open opens the named pin with the given backend.
// chip is only used by the cdev backend.
func Open(backend, chip, name string) (Pin, error) {
	switch backend {
	case BackendPeriph, "":
		return OpenPeriph(name)
	case BackendCdev:
		return OpenCdev(chip, name)
	default:
		return nil, fmt.Errorf("unknown GPIO backend '%s'", backend)
	}
}

// ParseOffset converts a pin name such as "GPIO27" or "27" to its BCM line offset.
func ParseOffset(name string) (int, error) {
	s := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "GPIO")
	offset, err := strconv.Atoi(s)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid GPIO pin name '%s'", name)
	}
	return offset, nil
}
