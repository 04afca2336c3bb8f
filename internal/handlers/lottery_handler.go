package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ArowuTest/forum-lottery-backend/internal/middleware"
	"github.com/ArowuTest/forum-lottery-backend/internal/models"
	"github.com/ArowuTest/forum-lottery-backend/internal/services"
	"github.com/ArowuTest/forum-lottery-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// LotteryHandler handles lottery event HTTP requests
type LotteryHandler struct {
	drawService    services.DrawService
	eventService   services.LotteryEventService
	requestTimeout time.Duration
}

// NewLotteryHandler creates a new LotteryHandler
func NewLotteryHandler(drawService services.DrawService, eventService services.LotteryEventService, requestTimeout time.Duration) *LotteryHandler {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &LotteryHandler{
		drawService:    drawService,
		eventService:   eventService,
		requestTimeout: requestTimeout,
	}
}

func (h *LotteryHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.requestTimeout)
}

// CreateEvent handles POST /lottery/events
func (h *LotteryHandler) CreateEvent(c *gin.Context) {
	var req models.LotteryEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.eventService.CreateEvent(ctx, &req, c.GetString(middleware.ContextUserID))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// GetEvent handles GET /lottery/events/:id
func (h *LotteryHandler) GetEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	details, err := h.eventService.GetEvent(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetEventByTarget handles GET /lottery/targets/:targetId/event
func (h *LotteryHandler) GetEventByTarget(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	details, err := h.eventService.GetEventByTarget(ctx, c.Param("targetId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// UpdateEvent handles PUT /lottery/events/:id
func (h *LotteryHandler) UpdateEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req models.LotteryEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.eventService.UpdateEvent(ctx, id, &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /lottery/events/:id
func (h *LotteryHandler) DeleteEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.eventService.DeleteEvent(ctx, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActivateEvent handles POST /lottery/events/:id/activate
func (h *LotteryHandler) ActivateEvent(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	event, err := h.eventService.ActivateEvent(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Draw handles POST /lottery/events/:id/draw
func (h *LotteryHandler) Draw(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.drawService.AttemptDraw(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(drawStatusCode(result.Status), result)
}

// Cancel handles POST /lottery/events/:id/cancel
func (h *LotteryHandler) Cancel(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.eventService.Cancel(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(cancelStatusCode(result.Status), result)
}

// ListWinners handles GET /lottery/events/:id/winners
func (h *LotteryHandler) ListWinners(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	winners, err := h.eventService.ListWinners(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winners": winners})
}

// TargetDeleted handles DELETE /lottery/targets/:targetId
func (h *LotteryHandler) TargetDeleted(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.eventService.HandleTargetDeleted(ctx, c.Param("targetId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(cancelStatusCode(result.Status), result)
}

// RecordContribution handles POST /lottery/targets/:targetId/contributions
func (h *LotteryHandler) RecordContribution(c *gin.Context) {
	var req models.ContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	contribution, err := h.eventService.RecordContribution(ctx, c.Param("targetId"), &req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contribution)
}

// RemoveContribution handles DELETE /lottery/targets/:targetId/contributions/:position
func (h *LotteryHandler) RemoveContribution(c *gin.Context) {
	position, err := utils.ParsePosition(c.Param("position"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.eventService.RemoveContribution(ctx, c.Param("targetId"), position); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func eventID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := utils.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

func drawStatusCode(status models.DrawOutcome) int {
	switch status {
	case models.DrawOutcomeSuccess, models.DrawOutcomeCancelled:
		return http.StatusOK
	case models.DrawOutcomeNotDrawable, models.DrawOutcomeNoWinners:
		return http.StatusUnprocessableEntity
	case models.DrawOutcomeAlreadyProcessed, models.DrawOutcomeInProgress:
		return http.StatusConflict
	case models.DrawOutcomePersistenceFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func cancelStatusCode(status models.CancelOutcome) int {
	switch status {
	case models.CancelOutcomeSuccess:
		return http.StatusOK
	case models.CancelOutcomeAlreadyFinalized:
		return http.StatusConflict
	case models.CancelOutcomeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps service errors onto HTTP responses
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidEvent), errors.Is(err, services.ErrInvalidContribution):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateTarget),
		errors.Is(err, services.ErrDuplicateContribution),
		errors.Is(err, services.ErrEventImmutable),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrStaleState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Request timed out"})
	default:
		slog.Error("Lottery request failed", "error", err, "path", c.FullPath(), "requestId", c.GetString(middleware.ContextRequestID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
