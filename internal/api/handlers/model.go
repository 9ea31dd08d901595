package handlers

import (
	"net/http"

	"github.com/adoptimizer/adoptimizer/internal/api/response"
	"github.com/adoptimizer/adoptimizer/internal/ml"
)

// ModelHandler exposes training and model status.
type ModelHandler struct {
	lifecycle *ml.Lifecycle
}

// NewModelHandler creates a new ModelHandler.
func NewModelHandler(lifecycle *ml.Lifecycle) *ModelHandler {
	return &ModelHandler{lifecycle: lifecycle}
}

// Train runs a full training cycle and reports its metrics. Training is
// synchronous; concurrent requests are serialized by the lifecycle.
func (h *ModelHandler) Train(w http.ResponseWriter, _ *http.Request) {
	result, err := h.lifecycle.Train()
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, result)
}

// Status reports whether a model is loaded and its evaluation metrics.
func (h *ModelHandler) Status(w http.ResponseWriter, _ *http.Request) {
	artifact := h.lifecycle.Artifact()
	if artifact == nil {
		response.Success(w, map[string]interface{}{
			"trained": false,
		})
		return
	}

	response.Success(w, map[string]interface{}{
		"trained":    true,
		"trained_at": artifact.TrainedAt,
		"mae":        artifact.MAE,
		"r2":         artifact.R2,
	})
}
