package logging

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, New("debug", "text").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New("WARN", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("bogus", "text").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New("", "").GetLevel())
}

func TestNew_Format(t *testing.T) {
	_, ok := New("info", "json").Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok)
	_, ok = New("info", "text").Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.Equal(t, io.Discard, logger.Out)
}
