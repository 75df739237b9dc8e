package queue

const (
	TypeVoiceAnalyze = "voice:analyze"
)

type VoiceAnalyzePayload struct {
	AnalysisID string `json:"analysis_id"`
	UserID     string `json:"user_id"`
	Nickname   string `json:"nickname,omitempty"`
}
