package worker

import (
	"github.com/spec-kit/sales-crm/internal/service"
)

// StartActivityWorker registers the handlers that turn flow results into activity entries.
func StartActivityWorker(recorder *service.ActivityRecorder) {
	if recorder == nil {
		return
	}
	recorder.RegisterHandlers()
}
