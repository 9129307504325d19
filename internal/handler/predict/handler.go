package predict

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/getaround-ml/pricing-inference/internal/model"
	"github.com/getaround-ml/pricing-inference/pkg/metric"
)

const (
	statusOk          = "ok"
	statusClientError = "client_error"
	statusServerError = "server_error"
)

// Handler serves pricing predictions from the loaded bundle. The optional
// memo short-circuits rows already priced in this process.
type Handler struct {
	bundle *model.Bundle
	memo   *Memo
}

func NewHandler(bundle *model.Bundle, memo *Memo) *Handler {
	return &Handler{bundle: bundle, memo: memo}
}

// Predict handles POST /predict. The batch is all-or-nothing: any malformed
// row fails the whole request with a 400 and no predictions.
func (h *Handler) Predict(c *gin.Context) {
	startTime := time.Now()
	status := statusOk
	defer func() {
		tags := metric.BuildTag(metric.NewTag(metric.TagStatus, status))
		metric.Incr(metric.PredictRequestCount, tags)
		metric.Timing(metric.PredictRequestLatency, time.Since(startTime), tags)
	}()

	var request Request
	if err := c.ShouldBindJSON(&request); err != nil {
		status = statusClientError
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	frame, err := model.BuildFrame(h.bundle.Schema(), request.Input)
	if err != nil {
		status = statusClientError
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metric.Count(metric.PredictBatchSize, int64(frame.Len()), nil)

	predictions, err := h.predict(frame)
	if err != nil {
		status = statusServerError
		log.Error().Err(err).Msg("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Prediction: predictions})
}

func (h *Handler) predict(frame *model.Frame) ([]float64, error) {
	if h.memo == nil {
		return h.bundle.Predict(frame)
	}
	predictions := make([]float64, frame.Len())
	for i := 0; i < frame.Len(); i++ {
		row := frame.Row(i)
		if cached, ok := h.memo.Get(row); ok {
			predictions[i] = cached
			continue
		}
		prediction, err := h.bundle.PredictRow(row)
		if err != nil {
			return nil, err
		}
		h.memo.Put(row, prediction)
		predictions[i] = prediction
	}
	return predictions, nil
}
