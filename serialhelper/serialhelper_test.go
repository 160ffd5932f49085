package serialhelper

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCmdline(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cmdline.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	old := cmdlineFile
	cmdlineFile = path
	t.Cleanup(func() { cmdlineFile = old })
}

func TestSerialInUseFromTerminal(t *testing.T) {
	writeCmdline(t, "console=serial0,115200 console=tty1 root=PARTUUID=1234 rootwait\n")
	assert.True(t, SerialInUseFromTerminal("/dev/serial0"))
	assert.False(t, SerialInUseFromTerminal("/dev/ttyUSB0"))

	writeCmdline(t, "console=tty1 root=PARTUUID=1234 rootwait\n")
	assert.False(t, SerialInUseFromTerminal("/dev/serial0"))

	cmdlineFile = filepath.Join(t.TempDir(), "missing.txt")
	assert.False(t, SerialInUseFromTerminal("/dev/serial0"))
}

func TestGetSerialLockContention(t *testing.T) {
	sleepFn = func(time.Duration) {}
	defer func() { sleepFn = time.Sleep }()

	path := filepath.Join(t.TempDir(), "serial0")
	require.NoError(t, os.WriteFile(path, nil, 0666))

	first, err := GetSerial(path, 0, time.Second)
	require.NoError(t, err)

	_, err = GetSerial(path, 2, time.Second)
	var unavailable *SerialUnavailableError
	require.True(t, errors.As(err, &unavailable))

	require.NoError(t, ReleaseSerial(first))

	second, err := GetSerial(path, 0, time.Second)
	require.NoError(t, err)
	assert.NoError(t, ReleaseSerial(second))
}

func TestOpenRefusesConsolePort(t *testing.T) {
	writeCmdline(t, "console=serial0,115200 console=tty1\n")
	_, err := Open(Config{Name: "/dev/serial0", Baud: 115200})
	var unavailable *SerialUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Contains(t, err.Error(), "terminal console")
}

func TestOpenMissingPort(t *testing.T) {
	writeCmdline(t, "")
	path := filepath.Join(t.TempDir(), "ttyNOPE")
	_, err := Open(Config{Name: path, Baud: 115200})
	var unavailable *SerialUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigValidate(t *testing.T) {
	good := Config{Name: "/dev/serial0", Baud: 115200, Backend: BackendTarm, LockRetries: 3}
	assert.NoError(t, good.Validate())

	c := good
	c.Name = ""
	assert.Error(t, c.Validate())

	c = good
	c.Baud = 0
	assert.Error(t, c.Validate())

	c = good
	c.Backend = "pyserial"
	assert.Error(t, c.Validate())

	c = good
	c.LockRetries = -1
	assert.Error(t, c.Validate())
}
