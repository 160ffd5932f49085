package powerpin

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

type periphPin struct {
	pin gpio.PinIO
}

// OpenPeriph initialises the periph host drivers and looks up the pin by name.
// The pin is driven low straight away so the Trinket starts off unpowered.
func OpenPeriph(name string) (Pin, error) {
	if _, err := host.Init(); err != nil {
		return nil, NewUnavailableError("failed to initialize periph", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, NewUnavailableError(fmt.Sprintf("failed to find GPIO pin '%s'", name), nil)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, NewUnavailableError(fmt.Sprintf("failed to set %s as output", name), err)
	}
	return &periphPin{pin: pin}, nil
}

func (p *periphPin) On() error {
	return p.pin.Out(gpio.High)
}

func (p *periphPin) Off() error {
	return p.pin.Out(gpio.Low)
}

func (p *periphPin) Release() error {
	return p.pin.In(gpio.Float, gpio.NoEdge)
}
