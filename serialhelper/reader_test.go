package serialhelper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	port := NewFakePort("Trinket started\nHello")
	r := NewReader(port, port.Now)

	line, err := r.ReadLine(10 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Trinket started\n", line)

	// No newline arrives so the partial line comes back after the timeout.
	start := port.Now()
	line, err = r.ReadLine(10 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Hello", line)
	assert.Equal(t, 10*time.Second, port.Now().Sub(start))
}

func TestReadLineKeepsRemainder(t *testing.T) {
	port := NewFakePort("one\ntwo\nthr")
	r := NewReader(port, port.Now)

	for _, want := range []string{"one\n", "two\n", "thr", ""} {
		line, err := r.ReadLine(time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, line)
	}
}

func TestReadLineNothingReceived(t *testing.T) {
	port := NewFakePort("")
	r := NewReader(port, port.Now)

	line, err := r.ReadLine(2 * time.Second)
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestReadLineError(t *testing.T) {
	port := NewFakePort("")
	port.ReadErr = errors.New("input/output error")
	r := NewReader(port, port.Now)

	_, err := r.ReadLine(time.Second)
	assert.Equal(t, port.ReadErr, err)
}

func TestReadUntilPause(t *testing.T) {
	port := NewFakePort("Test\n 3")
	r := NewReader(port, port.Now)

	start := port.Now()
	out, err := r.ReadUntilPause(10*time.Second, 3*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "Test\n 3", out)
	assert.Equal(t, 3*time.Second, port.Now().Sub(start))

	start = port.Now()
	out, err = r.ReadUntilPause(5*time.Second, 3*time.Second)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 5*time.Second, port.Now().Sub(start))
}

func TestReadUntilPauseUsesLineRemainder(t *testing.T) {
	port := NewFakePort("banner\nextra")
	r := NewReader(port, port.Now)

	line, err := r.ReadLine(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "banner\n", line)

	out, err := r.ReadUntilPause(time.Second, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "extra", out)
}
