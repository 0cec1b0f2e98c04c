package handler

import (
	"context"
	"net/http"

	"dbscale/pkg/logger"
	"dbscale/pkg/scaling"

	"github.com/gin-gonic/gin"
)

// Executor runs one scaling operation end to end.
type Executor interface {
	Execute(ctx context.Context, direction scaling.Direction, trigger scaling.TriggerContext) (*scaling.Summary, error)
}

// ScaleHandler handles alert-webhook scale triggers
type ScaleHandler struct {
	executor Executor
}

// NewScaleHandler creates scale handler
func NewScaleHandler(executor Executor) *ScaleHandler {
	return &ScaleHandler{executor: executor}
}

// ScaleUp triggers a scale-up run
// @Summary Trigger scale up
// @Description Run one bounded scale-up operation against the configured database
// @Tags Scale
// @Param trigger body scaling.TriggerContext false "Trigger context from the alerting platform"
// @Produce json
// @Success 200 {object} scaling.Summary
// @Router /api/v1/scale/up [post]
func (h *ScaleHandler) ScaleUp(c *gin.Context) {
	h.run(c, scaling.DirectionUp)
}

// ScaleDown triggers a scale-down run
// @Summary Trigger scale down
// @Description Run one bounded scale-down operation against the configured database
// @Tags Scale
// @Param trigger body scaling.TriggerContext false "Trigger context from the alerting platform"
// @Produce json
// @Success 200 {object} scaling.Summary
// @Router /api/v1/scale/down [post]
func (h *ScaleHandler) ScaleDown(c *gin.Context) {
	h.run(c, scaling.DirectionDown)
}

func (h *ScaleHandler) run(c *gin.Context, direction scaling.Direction) {
	// The trigger body is optional: schedulers post nothing, alert rules
	// post their context. Anything unparseable is rejected.
	var trigger scaling.TriggerContext
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&trigger); err != nil {
			logger.ErrorCtx(c.Request.Context(), "invalid trigger payload: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trigger payload"})
			return
		}
	}

	summary, err := h.executor.Execute(c.Request.Context(), direction, trigger)
	if err != nil {
		logger.ErrorCtx(c.Request.Context(), "scale %s run failed: %v", direction, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"summary": summary,
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Healthz liveness probe
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
