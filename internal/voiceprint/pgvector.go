package voiceprint

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/soniva/backend/internal/models"
)

type PgVectorStore struct {
	db *pgxpool.Pool
}

func NewPgVectorStore(db *pgxpool.Pool) *PgVectorStore {
	return &PgVectorStore{db: db}
}

func (s *PgVectorStore) Upsert(ctx context.Context, vp VoicePrint) error {
	embedding := pgvector.NewVector(vp.Embedding)

	_, err := s.db.Exec(ctx,
		`INSERT INTO voiceprints (analysis_id, user_id, main_type, embedding)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (analysis_id) DO UPDATE SET main_type = $3, embedding = $4`,
		vp.AnalysisID, vp.UserID, vp.MainType, embedding,
	)
	if err != nil {
		return fmt.Errorf("upsert voiceprint %s: %w", vp.AnalysisID, err)
	}
	return nil
}

func (s *PgVectorStore) Similar(ctx context.Context, query []float32, opts SearchOptions) ([]models.SimilarVoice, error) {
	if opts.TopK <= 0 {
		opts.TopK = 10
	}

	embedding := pgvector.NewVector(query)

	rows, err := s.db.Query(ctx,
		`SELECT v.analysis_id, v.user_id, v.main_type,
		        1 - (v.embedding <=> $1) AS score
		 FROM voiceprints v
		 JOIN voice_analyses a ON a.id = v.analysis_id AND a.deleted_at IS NULL
		 WHERE v.user_id <> $2
		 ORDER BY v.embedding <=> $1
		 LIMIT $3`,
		embedding, opts.ExcludeUser, opts.TopK,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var results []models.SimilarVoice
	for rows.Next() {
		var r models.SimilarVoice
		if err := rows.Scan(&r.AnalysisID, &r.UserID, &r.MainType, &r.Score); err != nil {
			return nil, fmt.Errorf("scan similar voice: %w", err)
		}
		if opts.MinScore > 0 && r.Score < opts.MinScore {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *PgVectorStore) Delete(ctx context.Context, analysisID uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM voiceprints WHERE analysis_id = $1", analysisID)
	return err
}

var _ Store = (*PgVectorStore)(nil)
