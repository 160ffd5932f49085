package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("debug").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("not-a-level").GetLevel())
}
