package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogger_ReturnsInitializedLogger(t *testing.T) {
	logger := InitStderrLogger("warn")
	assert.Equal(t, logger, GetLogger())
}
