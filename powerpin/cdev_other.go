//go:build !linux

package powerpin

// OpenCdev is not available on non-Linux platforms.
func OpenCdev(chipName, name string) (Pin, error) {
	return nil, NewUnavailableError("gpio character device requires Linux", nil)
}
