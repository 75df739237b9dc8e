// Package voiceprint indexes a compact embedding per analyzed recording and
// answers "voices like mine" queries with pgvector cosine similarity.
package voiceprint

import (
	"context"

	"github.com/google/uuid"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/models"
)

// Dim is the embedding width: MFCC means plus MFCC deviations.
const Dim = 26

type VoicePrint struct {
	AnalysisID uuid.UUID
	UserID     uuid.UUID
	MainType   string
	Embedding  []float32
}

type SearchOptions struct {
	ExcludeUser uuid.UUID // drop the caller's own recordings
	TopK        int
	MinScore    float64
}

type Store interface {
	Upsert(ctx context.Context, vp VoicePrint) error
	Similar(ctx context.Context, embedding []float32, opts SearchOptions) ([]models.SimilarVoice, error)
	Delete(ctx context.Context, analysisID uuid.UUID) error
}

// EmbeddingFromFeatures flattens the cepstral statistics into the index
// vector. A recording with no spectral content yields a zero vector, which
// still inserts fine and simply never ranks high.
func EmbeddingFromFeatures(fv *analysis.FeatureVector) []float32 {
	emb := make([]float32, Dim)
	for i := 0; i < Dim/2; i++ {
		if i < len(fv.MFCCMean) {
			emb[i] = float32(fv.MFCCMean[i])
		}
		if i < len(fv.MFCCStd) {
			emb[Dim/2+i] = float32(fv.MFCCStd[i])
		}
	}
	return emb
}
