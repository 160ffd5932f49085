package serialhelper

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/TheCacophonyProject/trinket-test/internal/logging"
)

var log = logging.NewLogger("info")

var (
	cmdlineFile = "/boot/firmware/cmdline.txt"
	sleepFn     = time.Sleep
)

type SerialUnavailableError struct {
	msg string
	err error
}

func (e *SerialUnavailableError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *SerialUnavailableError) Unwrap() error {
	return e.err
}

func NewSerialUnavailableError(msg string) error {
	return &SerialUnavailableError{msg: msg}
}

func WrapSerialError(msg string, err error) error {
	return &SerialUnavailableError{msg: msg, err: err}
}

// SerialInUseFromTerminal checks if the kernel command line has the login console on the given port.
func SerialInUseFromTerminal(portPath string) bool {
	b, err := os.ReadFile(cmdlineFile)
	if err != nil {
		log.Debugf("Error when reading %s: %s", cmdlineFile, err)
		return false
	}
	console := "console=" + filepath.Base(portPath)
	for _, field := range strings.Fields(string(b)) {
		if field == console || strings.HasPrefix(field, console+",") {
			return true
		}
	}
	return false
}

// GetSerial will try to get a file lock on the serial port.
// defer ReleaseSerial(serialFile) should be called to release the lock and close the serial file.
func GetSerial(portPath string, retries int, wait time.Duration) (*os.File, error) {
	serialFile, err := os.OpenFile(portPath, os.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	lockAcquired := false
	defer func() {
		if !lockAcquired {
			serialFile.Close()
		}
	}()

	i := retries
	for {
		err = syscall.Flock(int(serialFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			lockAcquired = true
			break
		}

		if errno, ok := err.(syscall.Errno); ok && errno == syscall.EWOULDBLOCK {
			process, err := getLockingProcess(portPath)
			if err != nil {
				log.Debugf("Error checking locking process: %v", err)
			} else if process != "" {
				log.Printf("%s is locked by process: %s", portPath, strings.TrimSpace(process))
			}

			if i > 0 {
				log.Printf("%s is locked by another process. Retrying %d more times in %s...", portPath, i, wait)
				sleepFn(wait)
				i--
			} else {
				return nil, NewSerialUnavailableError("failed to get lock on serial, might be in use by other process")
			}
		} else {
			return nil, err
		}
	}

	return serialFile, nil
}

func getLockingProcess(serialPath string) (string, error) {
	cmd := exec.Command("fuser", serialPath)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	err := cmd.Run()
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok && exitError.ExitCode() == 1 {
			// Exit code 1 from `fuser` means no process is using the file
			return "", nil
		}
		return "", fmt.Errorf("failed to execute fuser: %v", err)
	}
	return output.String(), nil
}

func ReleaseSerial(serialFile *os.File) error {
	unlockErr := syscall.Flock(int(serialFile.Fd()), syscall.LOCK_UN)
	closeErr := serialFile.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}
