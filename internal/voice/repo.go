package voice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/internal/auth"
	"github.com/soniva/backend/internal/models"
	"github.com/soniva/backend/internal/voiceprint"
)

// ErrNotFound covers both missing and soft-deleted analyses.
var ErrNotFound = errors.New("analysis not found")

const analysisColumns = `id, user_id, status, gender, audio_path, audio_format, audio_size_bytes,
	duration_seconds, main_type, main_score, scores, features, attributes,
	report, report_provider, fail_reason, created_at, deleted_at`

func (s *Service) insert(ctx context.Context, rec *models.VoiceAnalysis) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO voice_analyses (id, user_id, status, gender, audio_path, audio_format,
		   audio_size_bytes, duration_seconds, main_type, main_score, scores, features,
		   attributes, report, report_provider, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rec.ID, rec.UserID, rec.Status, rec.Gender, rec.AudioPath, rec.AudioFormat,
		rec.AudioSizeBytes, rec.DurationSeconds, rec.MainType, rec.MainScore,
		rec.Scores, rec.Features, rec.Attributes, rec.Report, rec.ReportProvider, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *Service) updateResult(ctx context.Context, rec *models.VoiceAnalysis) error {
	_, err := s.db.Exec(ctx,
		`UPDATE voice_analyses
		 SET status = $2, duration_seconds = $3, main_type = $4, main_score = $5,
		     scores = $6, features = $7, attributes = $8, report = $9,
		     report_provider = $10, fail_reason = ''
		 WHERE id = $1`,
		rec.ID, rec.Status, rec.DurationSeconds, rec.MainType, rec.MainScore,
		rec.Scores, rec.Features, rec.Attributes, rec.Report, rec.ReportProvider,
	)
	if err != nil {
		return fmt.Errorf("update analysis result: %w", err)
	}
	return nil
}

func (s *Service) updateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := s.db.Exec(ctx, "UPDATE voice_analyses SET status = $1 WHERE id = $2", status, id)
	return err
}

func (s *Service) fail(ctx context.Context, id uuid.UUID, reason string) {
	_, err := s.db.Exec(ctx,
		"UPDATE voice_analyses SET status = $1, fail_reason = $2 WHERE id = $3",
		models.AnalysisStatusFailed, reason, id)
	if err != nil {
		// Already handling a failure; nothing more to do than log.
		slog.Error("mark analysis failed", "analysis_id", id, "error", err)
	}
}

// GetByID returns the caller's analysis, serving ready rows from cache.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.VoiceAnalysis, error) {
	userID := auth.UserIDFromContext(ctx)

	if s.cache != nil {
		var cached models.VoiceAnalysis
		if err := s.cache.Get(ctx, detailCachePrefix+id.String(), &cached); err == nil {
			if cached.UserID == userID {
				return &cached, nil
			}
		}
	}

	rec, err := s.scanOne(ctx,
		`SELECT `+analysisColumns+` FROM voice_analyses
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && rec.Status == models.AnalysisStatusReady {
		_ = s.cache.Set(ctx, detailCachePrefix+id.String(), rec, detailCacheTTL)
	}
	return rec, nil
}

// getAny loads a row without user scoping; only the worker uses it.
func (s *Service) getAny(ctx context.Context, id uuid.UUID) (*models.VoiceAnalysis, error) {
	return s.scanOne(ctx,
		`SELECT `+analysisColumns+` FROM voice_analyses WHERE id = $1 AND deleted_at IS NULL`,
		id,
	)
}

func (s *Service) scanOne(ctx context.Context, query string, args ...interface{}) (*models.VoiceAnalysis, error) {
	var rec models.VoiceAnalysis
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&rec.ID, &rec.UserID, &rec.Status, &rec.Gender, &rec.AudioPath, &rec.AudioFormat,
		&rec.AudioSizeBytes, &rec.DurationSeconds, &rec.MainType, &rec.MainScore,
		&rec.Scores, &rec.Features, &rec.Attributes,
		&rec.Report, &rec.ReportProvider, &rec.FailReason, &rec.CreatedAt, &rec.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get analysis: %w", err)
	}
	return &rec, nil
}

// List returns the caller's analyses, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.VoiceAnalysis, error) {
	userID := auth.UserIDFromContext(ctx)
	rows, err := s.db.Query(ctx,
		`SELECT `+analysisColumns+` FROM voice_analyses
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close()

	var recs []models.VoiceAnalysis
	for rows.Next() {
		var rec models.VoiceAnalysis
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Status, &rec.Gender, &rec.AudioPath, &rec.AudioFormat,
			&rec.AudioSizeBytes, &rec.DurationSeconds, &rec.MainType, &rec.MainScore,
			&rec.Scores, &rec.Features, &rec.Attributes,
			&rec.Report, &rec.ReportProvider, &rec.FailReason, &rec.CreatedAt, &rec.DeletedAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Delete soft-deletes the analysis and removes the derived artifacts. The
// raw audio object is removed immediately; the row is kept for bookkeeping.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		"UPDATE voice_analyses SET deleted_at = now() WHERE id = $1 AND user_id = $2",
		id, auth.UserIDFromContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}

	if rec.AudioPath != "" {
		_ = s.storage.Delete(ctx, s.bucket, rec.AudioPath)
	}
	_ = s.prints.Delete(ctx, id)
	s.invalidateDetail(ctx, id)
	return nil
}

// Similar finds voices close to the given analysis across other users.
func (s *Service) Similar(ctx context.Context, id uuid.UUID, topK int) ([]models.SimilarVoice, error) {
	rec, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.AnalysisStatusReady {
		return nil, fmt.Errorf("analysis %s is not ready", id)
	}

	var fv analysis.FeatureVector
	if err := json.Unmarshal(rec.Features, &fv); err != nil {
		return nil, fmt.Errorf("decode stored features: %w", err)
	}

	return s.prints.Similar(ctx, voiceprint.EmbeddingFromFeatures(&fv), voiceprint.SearchOptions{
		ExcludeUser: rec.UserID,
		TopK:        topK,
	})
}

// RecommendedSongs returns catalog entries matching a voice type.
func (s *Service) RecommendedSongs(ctx context.Context, voiceType, gender string, limit int) ([]models.Song, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, title, artist, voice_type, gender, created_at
		 FROM songs WHERE voice_type = $1 AND gender = $2
		 ORDER BY created_at DESC LIMIT $3`,
		voiceType, gender, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.VoiceType,
			&song.Gender, &song.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, nil
}

func (s *Service) invalidateDetail(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, detailCachePrefix+id.String())
	}
}

func objectPath(userID, analysisID uuid.UUID, format audio.Format) string {
	return fmt.Sprintf("%s/%s.%s", userID, analysisID, format)
}

func contentType(format audio.Format) string {
	switch format {
	case audio.FormatWAV:
		return "audio/wav"
	case audio.FormatMP3:
		return "audio/mpeg"
	case audio.FormatFLAC:
		return "audio/flac"
	case audio.FormatOGG:
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
