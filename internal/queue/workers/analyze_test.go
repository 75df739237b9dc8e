package workers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/internal/voice"
	"github.com/soniva/backend/internal/voicetype"
)

func TestClassifyErrorSkipsRetryOnTerminalFailures(t *testing.T) {
	terminal := []error{
		audio.ErrUnsupportedFormat,
		audio.ErrCorruptAudio,
		audio.ErrSizeExceeded,
		audio.ErrDurationExceeded,
		analysis.ErrInsufficientSignal,
		voicetype.ErrUnknownGender,
		voice.ErrNotFound,
	}
	for _, sentinel := range terminal {
		err := classifyError(fmt.Errorf("analyze a1b2: %w", sentinel))
		assert.ErrorIs(t, err, asynq.SkipRetry, "%v must not be retried", sentinel)
	}
}

func TestClassifyErrorRetainsTransientFailures(t *testing.T) {
	transient := errors.New("dial tcp: connection refused")
	err := classifyError(fmt.Errorf("download audio: %w", transient))
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, transient)
}
