package voice

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniva/backend/internal/aireport"
	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/internal/auth"
	"github.com/soniva/backend/internal/config"
	"github.com/soniva/backend/internal/models"
	"github.com/soniva/backend/internal/queue"
	"github.com/soniva/backend/internal/storage"
	"github.com/soniva/backend/internal/voiceprint"
	"github.com/soniva/backend/internal/voicetype"
)

// fakeDB records every Exec so tests can assert on the statements a flow
// produced. Reads report no rows.
type fakeDB struct {
	execSQL  []string
	execArgs [][]any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, pgx.ErrNoRows
}

func (f *fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return noRow{} }

type noRow struct{}

func (noRow) Scan(...any) error { return pgx.ErrNoRows }

type stubQueue struct {
	err      error
	payloads []queue.VoiceAnalyzePayload
}

func (q *stubQueue) EnqueueVoiceAnalyze(p queue.VoiceAnalyzePayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, p)
	return nil
}

type noopPrints struct{}

func (noopPrints) Upsert(context.Context, voiceprint.VoicePrint) error { return nil }
func (noopPrints) Similar(context.Context, []float32, voiceprint.SearchOptions) ([]models.SimilarVoice, error) {
	return nil, nil
}
func (noopPrints) Delete(context.Context, uuid.UUID) error { return nil }

func newTestService(t *testing.T, db *fakeDB, q *stubQueue) *Service {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewService(db, store, "voices", config.AnalysisConfig{
		MaxUploadBytes:     1 << 20,
		MaxDurationSeconds: 300,
		SampleRate:         22050,
	}, aireport.NewGateway(config.ReportConfig{DefaultProvider: "openai"}), noopPrints{}, nil, q)
}

func TestUploadEnqueuesTask(t *testing.T) {
	db := &fakeDB{}
	q := &stubQueue{}
	svc := newTestService(t, db, q)

	userID := uuid.New()
	ctx := auth.WithUserID(context.Background(), userID)

	rec, err := svc.Upload(ctx, []byte("riff-bytes"), audio.FormatWAV, voicetype.GenderFemale, "Mio")
	require.NoError(t, err)

	assert.Equal(t, models.AnalysisStatusPending, rec.Status)
	assert.Equal(t, userID, rec.UserID)

	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "INSERT INTO voice_analyses")

	require.Len(t, q.payloads, 1)
	assert.Equal(t, rec.ID.String(), q.payloads[0].AnalysisID)
	assert.Equal(t, userID.String(), q.payloads[0].UserID)
	assert.Equal(t, "Mio", q.payloads[0].Nickname)
}

func TestUploadEnqueueFailureMarksRowFailed(t *testing.T) {
	db := &fakeDB{}
	q := &stubQueue{err: errors.New("broker unavailable")}
	svc := newTestService(t, db, q)

	ctx := auth.WithUserID(context.Background(), uuid.New())
	_, err := svc.Upload(ctx, []byte("riff-bytes"), audio.FormatWAV, voicetype.GenderFemale, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, q.err)

	// Insert, then the failed marker: the row must not stay pending when no
	// task exists to complete it.
	require.Len(t, db.execSQL, 2)
	assert.Contains(t, db.execSQL[1], "fail_reason")
	require.NotEmpty(t, db.execArgs[1])
	assert.Equal(t, models.AnalysisStatusFailed, db.execArgs[1][0])
}

func TestUploadRejectsOversizedBeforeTouchingStorage(t *testing.T) {
	db := &fakeDB{}
	svc := newTestService(t, db, &stubQueue{})

	ctx := auth.WithUserID(context.Background(), uuid.New())
	big := make([]byte, (1<<20)+1)
	_, err := svc.Upload(ctx, big, audio.FormatWAV, voicetype.GenderFemale, "")
	assert.ErrorIs(t, err, audio.ErrSizeExceeded)
	assert.Empty(t, db.execSQL)
}
