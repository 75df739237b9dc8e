// Package voice is the application service around the analysis pipeline:
// it owns uploads, the decode-extract-score-report flow, persistence of
// results, and the read API the handlers expose.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/soniva/backend/internal/aireport"
	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/internal/auth"
	"github.com/soniva/backend/internal/cache"
	"github.com/soniva/backend/internal/config"
	"github.com/soniva/backend/internal/models"
	"github.com/soniva/backend/internal/queue"
	"github.com/soniva/backend/internal/storage"
	"github.com/soniva/backend/internal/voiceprint"
	"github.com/soniva/backend/internal/voicetype"
)

const (
	detailCacheTTL    = 10 * time.Minute
	detailCachePrefix = "analysis:"
)

// querier is the subset of pgxpool.Pool the service touches. Tests substitute
// a recording fake.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// enqueuer hands analysis tasks to the worker queue.
type enqueuer interface {
	EnqueueVoiceAnalyze(payload queue.VoiceAnalyzePayload) error
}

type Service struct {
	db        querier
	storage   storage.Storage
	bucket    string
	decoder   *audio.Decoder
	extractor *analysis.Extractor
	reports   aireport.Gateway
	prints    voiceprint.Store
	cache     *cache.Cache
	queue     enqueuer
}

func NewService(
	db querier,
	store storage.Storage,
	bucket string,
	cfg config.AnalysisConfig,
	reports aireport.Gateway,
	prints voiceprint.Store,
	c *cache.Cache,
	qc enqueuer,
) *Service {
	return &Service{
		db:      db,
		storage: store,
		bucket:  bucket,
		decoder: audio.NewDecoder(cfg.SampleRate, cfg.MaxUploadBytes,
			time.Duration(cfg.MaxDurationSeconds*float64(time.Second))),
		extractor: analysis.NewExtractor(cfg.SampleRate, analysis.DefaultExtractorConfig()),
		reports:   reports,
		prints:    prints,
		cache:     c,
		queue:     qc,
	}
}

// AnalyzeRequest is the synchronous entrypoint payload: raw bytes plus the
// user-declared gender the scorer is conditioned on.
type AnalyzeRequest struct {
	Data     []byte
	Format   audio.Format
	Gender   voicetype.Gender
	Nickname string
	Persist  bool // store audio and result; the quick try-out path skips both
}

// Result is the fully assembled analysis before persistence.
type Result struct {
	Features   *analysis.FeatureVector `json:"features"`
	Scores     *voicetype.ScoreSet     `json:"scores"`
	Main       voicetype.Entry         `json:"main_type"`
	Attributes voicetype.Attributes    `json:"attributes"`
	Report     *aireport.Report        `json:"report"`
}

// Analyze runs the full pipeline in-request and, when Persist is set,
// stores both the raw audio and the assembled result.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*models.VoiceAnalysis, *Result, error) {
	res, err := s.runPipeline(ctx, req.Data, req.Format, req.Gender, req.Nickname)
	if err != nil {
		return nil, nil, err
	}

	rec := &models.VoiceAnalysis{
		ID:              uuid.New(),
		UserID:          auth.UserIDFromContext(ctx),
		Status:          models.AnalysisStatusReady,
		Gender:          string(req.Gender),
		AudioFormat:     string(req.Format),
		AudioSizeBytes:  int64(len(req.Data)),
		DurationSeconds: res.Features.DurationSeconds,
		CreatedAt:       time.Now().UTC(),
	}
	fillResult(rec, res)

	if !req.Persist {
		return rec, res, nil
	}

	rec.AudioPath = objectPath(rec.UserID, rec.ID, req.Format)
	if err := s.storage.Upload(ctx, s.bucket, rec.AudioPath,
		bytes.NewReader(req.Data), contentType(req.Format)); err != nil {
		return nil, nil, fmt.Errorf("store audio: %w", err)
	}

	if err := s.insert(ctx, rec); err != nil {
		return nil, nil, err
	}
	s.indexVoiceprint(ctx, rec, res)

	return rec, res, nil
}

// Upload accepts a recording for asynchronous analysis: store the audio,
// insert a pending row, enqueue the worker task.
func (s *Service) Upload(ctx context.Context, data []byte, format audio.Format, gender voicetype.Gender, nickname string) (*models.VoiceAnalysis, error) {
	if int64(len(data)) > s.decoder.MaxBytes() {
		return nil, fmt.Errorf("upload of %d bytes: %w", len(data), audio.ErrSizeExceeded)
	}

	userID := auth.UserIDFromContext(ctx)
	rec := &models.VoiceAnalysis{
		ID:             uuid.New(),
		UserID:         userID,
		Status:         models.AnalysisStatusPending,
		Gender:         string(gender),
		AudioFormat:    string(format),
		AudioSizeBytes: int64(len(data)),
		CreatedAt:      time.Now().UTC(),
	}
	rec.AudioPath = objectPath(userID, rec.ID, format)

	if err := s.storage.Upload(ctx, s.bucket, rec.AudioPath,
		bytes.NewReader(data), contentType(format)); err != nil {
		return nil, fmt.Errorf("store audio: %w", err)
	}

	if err := s.insert(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueVoiceAnalyze(queue.VoiceAnalyzePayload{
		AnalysisID: rec.ID.String(),
		UserID:     userID.String(),
		Nickname:   nickname,
	}); err != nil {
		// Nothing will ever pick up a row without a queued task, so surface
		// the failure instead of leaving the row pending forever.
		slog.Error("enqueue analysis failed", "analysis_id", rec.ID, "error", err)
		s.fail(ctx, rec.ID, "could not queue analysis")
		return nil, fmt.Errorf("enqueue analysis: %w", err)
	}

	return rec, nil
}

// Process is the worker entrypoint: load a pending analysis, run the
// pipeline on the stored audio, and persist the outcome.
func (s *Service) Process(ctx context.Context, analysisID uuid.UUID, nickname string) error {
	rec, err := s.getAny(ctx, analysisID)
	if err != nil {
		return fmt.Errorf("load analysis: %w", err)
	}

	if err := s.updateStatus(ctx, analysisID, models.AnalysisStatusProcessing); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	reader, err := s.storage.Download(ctx, s.bucket, rec.AudioPath)
	if err != nil {
		s.fail(ctx, analysisID, "audio object missing")
		return fmt.Errorf("download audio: %w", err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		s.fail(ctx, analysisID, "audio object unreadable")
		return fmt.Errorf("read audio: %w", err)
	}

	gender, err := voicetype.ParseGender(rec.Gender)
	if err != nil {
		s.fail(ctx, analysisID, err.Error())
		return err
	}

	res, err := s.runPipeline(ctx, data, audio.Format(rec.AudioFormat), gender, nickname)
	if err != nil {
		s.fail(ctx, analysisID, err.Error())
		return fmt.Errorf("analyze %s: %w", analysisID, err)
	}

	fillResult(rec, res)
	rec.DurationSeconds = res.Features.DurationSeconds
	rec.Status = models.AnalysisStatusReady
	if err := s.updateResult(ctx, rec); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	s.indexVoiceprint(ctx, rec, res)
	s.invalidateDetail(ctx, analysisID)

	slog.Info("analysis ready", "analysis_id", analysisID, "main_type", rec.MainType)
	return nil
}

func (s *Service) runPipeline(ctx context.Context, data []byte, format audio.Format, gender voicetype.Gender, nickname string) (*Result, error) {
	buf, err := s.decoder.Decode(data, format)
	if err != nil {
		return nil, err
	}

	fv, err := s.extractor.Extract(buf)
	if err != nil {
		return nil, err
	}

	scores, err := voicetype.Score(fv, gender)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Features:   fv,
		Scores:     scores,
		Main:       scores.Main(),
		Attributes: voicetype.DeriveAttributes(fv, gender),
	}

	report, err := s.reports.Generate(ctx, aireport.Request{
		Nickname:   nickname,
		Gender:     gender,
		Features:   fv,
		Scores:     scores,
		Attributes: res.Attributes,
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}
	res.Report = report

	return res, nil
}

// fillResult denormalizes the assembled result onto the row.
func fillResult(rec *models.VoiceAnalysis, res *Result) {
	rec.MainType = res.Main.Label
	rec.MainScore = res.Main.Score
	rec.Scores, _ = json.Marshal(res.Scores)
	rec.Features, _ = json.Marshal(res.Features)
	rec.Attributes, _ = json.Marshal(res.Attributes)
	rec.Report = res.Report.Content
	rec.ReportProvider = res.Report.Provider
}

func (s *Service) indexVoiceprint(ctx context.Context, rec *models.VoiceAnalysis, res *Result) {
	err := s.prints.Upsert(ctx, voiceprint.VoicePrint{
		AnalysisID: rec.ID,
		UserID:     rec.UserID,
		MainType:   rec.MainType,
		Embedding:  voiceprint.EmbeddingFromFeatures(res.Features),
	})
	if err != nil {
		// Similarity is best-effort; the analysis itself is already stored.
		slog.Error("voiceprint upsert failed", "analysis_id", rec.ID, "error", err)
	}
}
