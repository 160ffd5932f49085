package serialhelper

import (
	"errors"
	"time"
)

var errPortClosed = errors.New("port closed")

// FakePort is a scripted Port for tests.
// Reads return queued data; when the queue is empty a read returns nothing and the
// fake clock moves on by PollInterval, as a real port would after its read timeout.
type FakePort struct {
	// Reply, if set, is called with every write and its result is queued for reading.
	Reply func(written []byte) []byte

	WriteErr error
	ReadErr  error

	Written [][]byte
	Closed  bool

	queue []byte
	clock time.Time
}

func NewFakePort(initial string) *FakePort {
	return &FakePort{
		queue: []byte(initial),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now is the fake clock, to be handed to NewReader.
func (f *FakePort) Now() time.Time {
	return f.clock
}

func (f *FakePort) Queue(data string) {
	f.queue = append(f.queue, data...)
}

func (f *FakePort) Read(p []byte) (int, error) {
	if f.Closed {
		return 0, errPortClosed
	}
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	if len(f.queue) == 0 {
		f.clock = f.clock.Add(PollInterval)
		return 0, nil
	}
	n := copy(p, f.queue)
	f.queue = f.queue[n:]
	return n, nil
}

func (f *FakePort) Write(p []byte) (int, error) {
	if f.Closed {
		return 0, errPortClosed
	}
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	f.Written = append(f.Written, append([]byte(nil), p...))
	if f.Reply != nil {
		f.queue = append(f.queue, f.Reply(p)...)
	}
	return len(p), nil
}

func (f *FakePort) Close() error {
	f.Closed = true
	return nil
}
