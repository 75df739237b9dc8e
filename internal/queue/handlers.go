package queue

import (
	"github.com/hibiken/asynq"
)

// HandlersRegistry collects task handlers for the worker mux. The worker
// registers one handler per task type (currently just voice:analyze) before
// the asynq server starts.
type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	return &HandlersRegistry{
		mux: asynq.NewServeMux(),
	}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
}

// Mux exposes the assembled mux for asynq.Server.Run.
func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}
