//go:build linux

package powerpin

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

const consumer = "trinket-test"

type cdevPin struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// OpenCdev requests the pin as an output, initially low, through the GPIO character device.
func OpenCdev(chipName, name string) (Pin, error) {
	offset, err := ParseOffset(name)
	if err != nil {
		return nil, err
	}
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, NewUnavailableError(fmt.Sprintf("open gpio chip %s", chipName), err)
	}
	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, NewUnavailableError(fmt.Sprintf("request pin %d", offset), err)
	}
	return &cdevPin{chip: chip, line: line}, nil
}

func (p *cdevPin) On() error {
	return p.line.SetValue(1)
}

func (p *cdevPin) Off() error {
	return p.line.SetValue(0)
}

// Release puts the line back to an input before giving it up, matching the Pi boot default.
func (p *cdevPin) Release() error {
	var errs []error
	if p.line != nil {
		if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin: %w", err))
		}
		p.line = nil
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		p.chip = nil
	}
	return errors.Join(errs...)
}
