package trinkettest

import (
	"fmt"
	"time"

	"github.com/TheCacophonyProject/trinket-test/powerpin"
	"github.com/TheCacophonyProject/trinket-test/serialhelper"
)

const (
	ReadModeLine  = "line"
	ReadModePause = "pause"
)

var defaultTestStrings = []string{"Hello World!", "Test 1", "Test 2\n", "Test\n 3"}

// Exchange is one test string written to the Trinket and what came back.
type Exchange struct {
	Sent     string
	Written  int
	Received string
}

type Report struct {
	Banner        string
	BannerMatched bool
	Exchanges     []Exchange
}

// Tester powers up the Trinket, checks its banner then sends each test string and
// reads back one response per write.
type Tester struct {
	PortName    string
	OpenPin     func() (powerpin.Pin, error)
	OpenPort    func() (serialhelper.Port, error)
	Banner      string
	TestStrings []string
	ReadMode    string
	Timeout     time.Duration
	Pause       time.Duration
	// Now is the clock used to time reads, time.Now when nil.
	Now func() time.Time
}

// Run always leaves the power pin low and released and the port closed, for
// whatever was opened, including when a panic unwinds through it.
func (t *Tester) Run() (*Report, error) {
	pin, err := t.OpenPin()
	if err != nil {
		return nil, err
	}
	defer func() {
		log.Println("Turning off Trinket")
		if err := pin.Off(); err != nil {
			log.Errorf("Failed to drive power pin low: %v", err)
		}
		log.Debug("Releasing power pin")
		if err := pin.Release(); err != nil {
			log.Errorf("Failed to release power pin: %v", err)
		}
	}()

	port, err := t.OpenPort()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := port.Close(); err != nil {
			log.Errorf("Failed to close %s: %v", t.PortName, err)
		}
	}()
	log.Printf("Opened port %s for testing", t.PortName)

	log.Println("Turning on Trinket")
	if err := pin.On(); err != nil {
		return nil, fmt.Errorf("failed to drive power pin high: %w", err)
	}

	reader := serialhelper.NewReader(port, t.Now)
	report := &Report{}

	report.Banner, err = t.read(reader)
	if err != nil {
		return report, serialhelper.WrapSerialError("failed to read banner", err)
	}
	log.Printf("Rcvd: %q", report.Banner)

	if report.Banner != t.Banner+"\n" {
		if report.Banner == "" {
			log.Println("No start banner received")
		} else {
			log.Printf("Banner didn't match %q, not sending test strings", t.Banner+"\n")
		}
		return report, nil
	}
	report.BannerMatched = true

	for _, s := range t.TestStrings {
		n, err := port.Write([]byte(s))
		if err != nil {
			return report, serialhelper.WrapSerialError(fmt.Sprintf("failed to write %q", s), err)
		}
		log.Printf("Sent: %q bytes: %d", s, n)

		rcvd, err := t.read(reader)
		report.Exchanges = append(report.Exchanges, Exchange{Sent: s, Written: n, Received: rcvd})
		if err != nil {
			return report, serialhelper.WrapSerialError("failed to read response", err)
		}
		if rcvd == "" {
			log.Println("No data received")
		}
		log.Printf("Rcvd: %q bytes: %d", rcvd, len(rcvd))
	}
	return report, nil
}

func (t *Tester) read(r *serialhelper.Reader) (string, error) {
	if t.ReadMode == ReadModePause {
		return r.ReadUntilPause(t.Timeout, t.Pause)
	}
	return r.ReadLine(t.Timeout)
}
