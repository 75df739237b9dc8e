package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VoiceAnalysis is one analyzed recording. Scores, Features and Attributes
// are stored as JSON documents so the analysis payload can evolve without
// schema churn; the main type and score are denormalized for list queries.
type VoiceAnalysis struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Status          string          `json:"status" db:"status"`
	Gender          string          `json:"gender" db:"gender"`
	AudioPath       string          `json:"audio_path,omitempty" db:"audio_path"`
	AudioFormat     string          `json:"audio_format,omitempty" db:"audio_format"`
	AudioSizeBytes  int64           `json:"audio_size_bytes,omitempty" db:"audio_size_bytes"`
	DurationSeconds float64         `json:"duration_seconds,omitempty" db:"duration_seconds"`
	MainType        string          `json:"main_type,omitempty" db:"main_type"`
	MainScore       float64         `json:"main_score,omitempty" db:"main_score"`
	Scores          json.RawMessage `json:"scores,omitempty" db:"scores"`
	Features        json.RawMessage `json:"features,omitempty" db:"features"`
	Attributes      json.RawMessage `json:"attributes,omitempty" db:"attributes"`
	Report          string          `json:"report,omitempty" db:"report"`
	ReportProvider  string          `json:"report_provider,omitempty" db:"report_provider"`
	FailReason      string          `json:"fail_reason,omitempty" db:"fail_reason"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	DeletedAt       *time.Time      `json:"-" db:"deleted_at"`
}

const (
	AnalysisStatusPending    = "pending"
	AnalysisStatusProcessing = "processing"
	AnalysisStatusReady      = "ready"
	AnalysisStatusFailed     = "failed"
)

// Song is one entry of the per-voice-type recommendation catalog.
type Song struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Artist    string    `json:"artist" db:"artist"`
	VoiceType string    `json:"voice_type" db:"voice_type"`
	Gender    string    `json:"gender" db:"gender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SimilarVoice is one neighbor from the voiceprint index.
type SimilarVoice struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	UserID     uuid.UUID `json:"user_id"`
	MainType   string    `json:"main_type"`
	Score      float64   `json:"score"` // cosine similarity in [0,1]
}
