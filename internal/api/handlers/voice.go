package handlers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/soniva/backend/internal/analysis"
	"github.com/soniva/backend/internal/audio"
	"github.com/soniva/backend/internal/voice"
	"github.com/soniva/backend/internal/voicetype"
)

type VoiceHandler struct {
	svc      *voice.Service
	validate *validator.Validate
	maxBytes int64
}

func NewVoiceHandler(svc *voice.Service, maxBytes int64) *VoiceHandler {
	return &VoiceHandler{
		svc:      svc,
		validate: validator.New(),
		maxBytes: maxBytes,
	}
}

type analyzeForm struct {
	Gender   string `validate:"required,oneof=female male"`
	Nickname string `validate:"max=40"`
}

// Analyze runs the pipeline synchronously and returns the assembled result.
// With persist=true the recording and result are also stored.
func (h *VoiceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	data, format, form, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	gender, err := voicetype.ParseGender(form.Gender)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec, res, err := h.svc.Analyze(r.Context(), voice.AnalyzeRequest{
		Data:     data,
		Format:   format,
		Gender:   gender,
		Nickname: form.Nickname,
		Persist:  r.FormValue("persist") == "true",
	})
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     rec.ID,
		"status": rec.Status,
		"result": res,
	})
}

// Upload accepts a recording for asynchronous analysis.
func (h *VoiceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, format, form, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	gender, err := voicetype.ParseGender(form.Gender)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec, err := h.svc.Upload(r.Context(), data, format, gender, form.Nickname)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, rec)
}

func (h *VoiceHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, audio.Format, *analyzeForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+(1<<20)) // form overhead
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return nil, "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file required"})
		return nil, "", nil, false
	}
	defer file.Close()

	form := &analyzeForm{
		Gender:   r.FormValue("gender"),
		Nickname: r.FormValue("nickname"),
	}
	if err := h.validate.Struct(form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "gender must be female or male"})
		return nil, "", nil, false
	}

	format, err := audio.ParseFormat(filepath.Ext(header.Filename))
	if err != nil {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
		return nil, "", nil, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable upload"})
		return nil, "", nil, false
	}

	return data, format, form, true
}

// writeAnalysisError maps pipeline sentinels onto HTTP statuses.
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, audio.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": err.Error()})
	case errors.Is(err, audio.ErrSizeExceeded):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	case errors.Is(err, audio.ErrDurationExceeded):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, audio.ErrCorruptAudio):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, analysis.ErrInsufficientSignal):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, voicetype.ErrUnknownGender):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, voice.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
