package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amidelab/enumerator/internal/domain"
	"github.com/amidelab/enumerator/internal/usecase"
)

// ServiceName is reported by the health check
const ServiceName = "amide-enumerator"

// HandlerConfig holds per-handler settings
type HandlerConfig struct {
	Transform domain.Transform
	MaxPairs  int
	Version   string
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	loader    *usecase.ReagentLoader
	service   *usecase.EnumerationService
	transform domain.Transform
	maxPairs  int
	version   string
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	loader *usecase.ReagentLoader,
	service *usecase.EnumerationService,
	logger *zap.Logger,
	config HandlerConfig,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		loader:    loader,
		service:   service,
		transform: config.Transform,
		maxPairs:  config.MaxPairs,
		version:   config.Version,
		logger:    logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": h.version,
	})
}

// Enumerate couples every posted acid with every posted amine
func (h *Handler) Enumerate(c *gin.Context) {
	var req EnumerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err))
		return
	}

	ctx := c.Request.Context()
	acids, err := h.loader.LoadLines(ctx, "acids", req.Acids)
	if err != nil {
		h.writeError(c, err)
		return
	}
	amines, err := h.loader.LoadLines(ctx, "amines", req.Amines)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if pairs := len(acids) * len(amines); h.maxPairs > 0 && pairs > h.maxPairs {
		h.writeError(c, fmt.Errorf("%w: %d pairs requested, limit is %d", domain.ErrTooManyPairs, pairs, h.maxPairs))
		return
	}

	builder := newResponseBuilder()
	summary, err := h.service.Run(ctx, acids, amines, h.transform, builder)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.Debug("enumeration served",
		zap.Int("pairs", summary.Pairs),
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected))
	c.JSON(http.StatusOK, builder.response(summary))
}

// writeError maps domain errors onto HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrTooManyPairs):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("enumerate request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}
