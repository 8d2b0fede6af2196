package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/acecasino/payout_automation/internal/application/services"
	"github.com/acecasino/payout_automation/internal/container"
	"github.com/acecasino/payout_automation/internal/domain/entities"
	"github.com/acecasino/payout_automation/pkg/logger"
	"github.com/labstack/echo"
	"github.com/shopspring/decimal"
)

// AutomationHandler exposes the payout engine's operational surface
type AutomationHandler struct {
	container *container.Container
}

// NewAutomationHandler creates a new automation handler
func NewAutomationHandler(c *container.Container) *AutomationHandler {
	return &AutomationHandler{container: c}
}

// createPayoutRequest is the admission request body
type createPayoutRequest struct {
	MerchantID         int    `json:"merchant_id"`
	Amount             string `json:"amount"`
	Currency           string `json:"currency"`
	DestinationWallet  string `json:"destination_wallet"`
	DestinationNetwork string `json:"destination_network"`
	ScheduleType       string `json:"schedule_type"`
	ScheduledFor       string `json:"scheduled_for"`
	OriginalRequestID  *int   `json:"original_request_id"`
	ThresholdAmount    string `json:"threshold_amount"`
	OverrideActor      string `json:"override_actor"`
	OverrideReason     string `json:"override_reason"`
	SourceDescription  string `json:"source_description"`
}

// admissionInput maps the request body onto the admission service input,
// including the schedule-type-specific metadata.
func (b createPayoutRequest) admissionInput() (services.PayoutAdmissionInput, error) {
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil {
		return services.PayoutAdmissionInput{}, fmt.Errorf("invalid amount format")
	}

	input := services.PayoutAdmissionInput{
		MerchantID:         b.MerchantID,
		Amount:             amount,
		Currency:           b.Currency,
		DestinationWallet:  b.DestinationWallet,
		DestinationNetwork: b.DestinationNetwork,
		ScheduleType:       entities.PayoutScheduleType(b.ScheduleType),
		OriginalRequestID:  b.OriginalRequestID,
		Metadata: entities.PayoutMetadata{
			OverrideActor:     b.OverrideActor,
			OverrideReason:    b.OverrideReason,
			SourceDescription: b.SourceDescription,
		},
	}
	if b.ScheduleType == "" {
		input.ScheduleType = entities.ScheduleTypeScheduled
	}
	if input.ScheduleType == entities.ScheduleTypeManualOverride && b.OverrideActor == "" {
		return services.PayoutAdmissionInput{}, fmt.Errorf("override_actor is required for manual override payouts")
	}
	if b.ScheduledFor != "" {
		scheduledFor, err := time.Parse(time.RFC3339, b.ScheduledFor)
		if err != nil {
			return services.PayoutAdmissionInput{}, fmt.Errorf("invalid scheduled_for timestamp")
		}
		input.ScheduledFor = &scheduledFor
	}
	if b.ThresholdAmount != "" {
		threshold, err := decimal.NewFromString(b.ThresholdAmount)
		if err != nil {
			return services.PayoutAdmissionInput{}, fmt.Errorf("invalid threshold_amount format")
		}
		input.Metadata.ThresholdAmount = &threshold
	}
	return input, nil
}

// CreatePayout handles POST /api/v1/payouts
func (h *AutomationHandler) CreatePayout(c echo.Context) error {
	var body createPayoutRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	input, err := body.admissionInput()
	if err != nil {
		logger.RequestLogger(c).WithError(err).Warn("Rejected malformed payout request")
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	request, err := h.container.AdmissionSvc.CreateAutomatedPayoutRequest(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, services.ErrMerchantNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			logger.RequestLogger(c).WithError(err).Error("Failed to admit payout request")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create payout request"})
		}
	}

	return c.JSON(http.StatusCreated, request)
}

// haltRequest is the emergency halt body
type haltRequest struct {
	Reason string `json:"reason"`
	Actor  string `json:"actor"`
}

// HaltProcessing handles POST /api/v1/processing/halt
func (h *AutomationHandler) HaltProcessing(c echo.Context) error {
	var body haltRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Reason == "" || body.Actor == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reason and actor are required"})
	}

	if err := h.container.Scheduler.EmergencyHalt(c.Request().Context(), body.Reason, body.Actor); err != nil {
		if errors.Is(err, services.ErrProcessingHalted) {
			return c.JSON(http.StatusConflict, map[string]interface{}{
				"error":  err.Error(),
				"reason": h.container.Scheduler.HaltReason(),
			})
		}
		logger.RequestLogger(c).WithError(err).Error("Failed to engage emergency halt")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to halt processing"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"halted": true, "reason": body.Reason})
}

// resumeRequest is the resume body
type resumeRequest struct {
	AuthorizedBy string `json:"authorized_by"`
}

// ResumeProcessing handles POST /api/v1/processing/resume
func (h *AutomationHandler) ResumeProcessing(c echo.Context) error {
	var body resumeRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.AuthorizedBy == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "authorized_by is required"})
	}

	h.container.Scheduler.Resume(c.Request().Context(), body.AuthorizedBy)
	return c.JSON(http.StatusOK, map[string]interface{}{"halted": false})
}

// QueueStatus handles GET /api/v1/queues
func (h *AutomationHandler) QueueStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"halted": h.container.Scheduler.IsHalted(),
		"reason": h.container.Scheduler.HaltReason(),
		"queues": h.container.QueueManager.Status(),
	})
}

// Metrics handles GET /api/v1/metrics
func (h *AutomationHandler) Metrics(c echo.Context) error {
	timeframe := entities.MetricsTimeframe(c.QueryParam("timeframe"))
	if timeframe == "" {
		timeframe = entities.TimeframeDaily
	}

	metrics, err := h.container.MetricsSvc.GetAutomationMetrics(c.Request().Context(), timeframe)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTimeframe) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		logger.RequestLogger(c).WithError(err).Error("Failed to compute metrics")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute metrics"})
	}
	return c.JSON(http.StatusOK, metrics)
}

// RefreshRiskScore handles POST /api/v1/merchants/:id/risk-score/refresh
func (h *AutomationHandler) RefreshRiskScore(c echo.Context) error {
	merchantID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid merchant id"})
	}

	score, err := h.container.RiskScoringSvc.RefreshMerchantRiskScore(c.Request().Context(), merchantID)
	if err != nil {
		if errors.Is(err, services.ErrMerchantNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		}
		logger.RequestLogger(c).WithError(err).WithField("merchant_id", merchantID).Error("Failed to refresh risk score")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to refresh risk score"})
	}
	return c.JSON(http.StatusOK, score)
}

// AuditTrail handles GET /api/v1/audit
func (h *AutomationHandler) AuditTrail(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.container.AuditSvc.RecentEvents(c.Request().Context(), limit)
	if err != nil {
		logger.RequestLogger(c).WithError(err).Error("Failed to read audit trail")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to read audit trail"})
	}
	return c.JSON(http.StatusOK, events)
}

// HeartBeat handles GET /health
func HeartBeat(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
