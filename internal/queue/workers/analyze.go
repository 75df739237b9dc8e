package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/internal/auth"
	"github.com/soniva/backend/internal/queue"
	"github.com/soniva/backend/internal/voice"
	"github.com/soniva/backend/internal/voicetype"
)

// AnalyzeWorker runs the full analysis pipeline for uploaded recordings.
type AnalyzeWorker struct {
	svc *voice.Service
}

func NewAnalyzeWorker(svc *voice.Service) *AnalyzeWorker {
	return &AnalyzeWorker{svc: svc}
}

func (w *AnalyzeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.VoiceAnalyzePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	analysisID, err := uuid.Parse(payload.AnalysisID)
	if err != nil {
		return fmt.Errorf("parse analysis ID: %w", err)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("parse user ID: %w", err)
	}

	slog.Info("processing analysis", "analysis_id", analysisID)

	ctx = auth.WithUserID(ctx, userID)
	if err := w.svc.Process(ctx, analysisID, payload.Nickname); err != nil {
		return classifyError(err)
	}

	slog.Info("analysis processed", "analysis_id", analysisID)
	return nil
}

// terminalFailures are deterministic rejections of the input itself. A retry
// replays the exact same decode and fails identically, so these bypass the
// queue's retry policy; only transient failures (storage, database, broker)
// are retried.
var terminalFailures = []error{
	audio.ErrUnsupportedFormat,
	audio.ErrCorruptAudio,
	audio.ErrSizeExceeded,
	audio.ErrDurationExceeded,
	analysis.ErrInsufficientSignal,
	voicetype.ErrUnknownGender,
	voice.ErrNotFound,
}

func classifyError(err error) error {
	for _, sentinel := range terminalFailures {
		if errors.Is(err, sentinel) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
	}
	return err
}
