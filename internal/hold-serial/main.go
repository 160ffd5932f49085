// Package holdserial takes the lock on a serial port and keeps it for a while,
// handy for checking that other tools back off while the port is in use.
package holdserial

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/TheCacophonyProject/trinket-test/internal/logging"
	"github.com/TheCacophonyProject/trinket-test/serialhelper"
	arg "github.com/alexflint/go-arg"
)

var (
	version = "<not set>"
	log     = logging.NewLogger("info")
	sleepFn = time.Sleep
)

type Args struct {
	Port        string        `arg:"--port" help:"Serial port to lock"`
	Hold        time.Duration `arg:"--hold" help:"How long to hold the lock for"`
	LockRetries int           `arg:"--lock-retries" help:"Times to retry getting the lock"`
	logging.LogArgs
}

func (Args) Version() string {
	return version
}

var defaultArgs = Args{
	Port:        "/dev/serial0",
	Hold:        20 * time.Second,
	LockRetries: 3,
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
	return args, err
}

func Run(inputArgs []string, ver string) error {
	version = ver
	args, err := procArgs(inputArgs)
	if err != nil {
		return fmt.Errorf("failed to parse args: %v", err)
	}
	log = logging.NewLogger(args.LogLevel)

	log.Printf("Getting lock on %s", args.Port)
	serialFile, err := serialhelper.GetSerial(args.Port, args.LockRetries, time.Second)
	if err != nil {
		return err
	}
	log.Println("Serial acquired")

	sleepFn(args.Hold)
	log.Println("Releasing serial")
	return serialhelper.ReleaseSerial(serialFile)
}
