package powerpin

import "errors"

var errReleased = errors.New("pin already released")

// Fake is a Pin that records what was done to it.
type Fake struct {
	// Levels holds every level written, true = high.
	Levels   []bool
	Released bool

	OnErr      error
	OffErr     error
	ReleaseErr error
}

func (f *Fake) On() error {
	if f.Released {
		return errReleased
	}
	if f.OnErr != nil {
		return f.OnErr
	}
	f.Levels = append(f.Levels, true)
	return nil
}

func (f *Fake) Off() error {
	if f.Released {
		return errReleased
	}
	if f.OffErr != nil {
		return f.OffErr
	}
	f.Levels = append(f.Levels, false)
	return nil
}

func (f *Fake) Release() error {
	f.Released = true
	return f.ReleaseErr
}

// High reports whether the last level written was high.
func (f *Fake) High() bool {
	return len(f.Levels) > 0 && f.Levels[len(f.Levels)-1]
}
