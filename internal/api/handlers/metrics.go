package handlers

import (
	"net/http"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/api/dto"
	"github.com/pratik-mahalle/linkboost/internal/api/middleware"
	"github.com/pratik-mahalle/linkboost/internal/domain/metric"
	"github.com/pratik-mahalle/linkboost/internal/pkg/errors"
	"github.com/pratik-mahalle/linkboost/internal/pkg/logger"
	"github.com/pratik-mahalle/linkboost/internal/pkg/metrics"
	"github.com/pratik-mahalle/linkboost/internal/pkg/utils"
	"github.com/pratik-mahalle/linkboost/internal/pkg/validator"
)

// EventPublisher delivers an event to one user's realtime clients
type EventPublisher interface {
	Publish(userID, msgType string, data interface{})
}

// MetricRecordedEvent is the realtime message type for successful writes
const MetricRecordedEvent = "metric.recorded"

// MetricsHandler serves the metrics ingest and read API
type MetricsHandler struct {
	service     metric.Service
	publisher   EventPublisher
	logger      *logger.Logger
	validator   *validator.Validator
	environment string
	now         func() time.Time
}

// NewMetricsHandler creates a metrics handler. publisher may be nil.
func NewMetricsHandler(service metric.Service, publisher EventPublisher, log *logger.Logger, val *validator.Validator, environment string) *MetricsHandler {
	return &MetricsHandler{
		service:     service,
		publisher:   publisher,
		logger:      log,
		validator:   val,
		environment: environment,
		now:         time.Now,
	}
}

// identity enforces authentication inside the handler as well, so a
// misrouted request never reaches the service.
func (h *MetricsHandler) identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentity(r)
	if !ok {
		utils.WriteError(w, errors.AuthenticationRequired("Authentication required"))
	}
	return id, ok
}

func (h *MetricsHandler) fail(w http.ResponseWriter, r *http.Request, id middleware.Identity, err error, message string) {
	respondFailure(w, h.logger, h.environment, err, message, map[string]interface{}{
		"user_id":    id.UserID,
		"route":      r.URL.Path,
		"request_id": middleware.GetRequestID(r),
	})
}

func (h *MetricsHandler) publish(userID, kind, recordID string, ts time.Time) {
	if h.publisher == nil {
		return
	}
	h.publisher.Publish(userID, MetricRecordedEvent, dto.MetricRecordedEvent{Kind: kind, ID: recordID, Timestamp: ts})
}

// RecordProfile stores a profile snapshot for the caller
// @Summary Record profile metrics
// @Tags Metrics
// @Accept json
// @Produce json
// @Param request body dto.ProfileMetricRequest true "Profile metrics"
// @Success 201 {object} utils.SuccessResponse{data=utils.MessageData}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /metrics/profile [post]
func (h *MetricsHandler) RecordProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req dto.ProfileMetricRequest
	if appErr := decodeAndValidate(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	m := req.ToModel(id.UserID)
	if m.Timestamp.IsZero() {
		m.Timestamp = h.now().UTC()
	}

	if err := h.service.RecordProfile(r.Context(), m); err != nil {
		metrics.RecordIngest("profile", false)
		h.fail(w, r, id, err, "Failed to record profile metrics")
		return
	}

	metrics.RecordIngest("profile", true)
	h.publish(id.UserID, "profile", m.ID, m.Timestamp)
	utils.WriteMessage(w, http.StatusCreated, "Profile metrics recorded successfully")
}

// RecordEngagement stores post engagement for the caller
// @Summary Record engagement metrics
// @Tags Metrics
// @Accept json
// @Produce json
// @Param request body dto.EngagementMetricRequest true "Engagement metrics"
// @Success 201 {object} utils.SuccessResponse{data=utils.MessageData}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /metrics/engagement [post]
func (h *MetricsHandler) RecordEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req dto.EngagementMetricRequest
	if appErr := decodeAndValidate(r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	m := req.ToModel(id.UserID)
	if m.Timestamp.IsZero() {
		m.Timestamp = h.now().UTC()
	}

	if err := h.service.RecordEngagement(r.Context(), m); err != nil {
		metrics.RecordIngest("engagement", false)
		h.fail(w, r, id, err, "Failed to record engagement metrics")
		return
	}

	metrics.RecordIngest("engagement", true)
	h.publish(id.UserID, "engagement", m.ID, m.Timestamp)
	utils.WriteMessage(w, http.StatusCreated, "Engagement metrics recorded successfully")
}

// Dashboard returns the caller's 30 day overview
// @Summary Metrics dashboard
// @Tags Metrics
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=metric.Dashboard,metadata=dto.ReadMetadata}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /metrics/dashboard [get]
func (h *MetricsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	data, err := h.service.Dashboard(r.Context(), id.UserID)
	if err != nil {
		h.fail(w, r, id, err, "Failed to fetch dashboard data")
		return
	}

	utils.WriteSuccessWithMetadata(w, http.StatusOK, data, dto.ReadMetadata{
		TotalRecords: data.Records,
		TimeRange:    data.Range,
	})
}

// Analytics returns daily buckets for a period
// @Summary Metrics analytics
// @Tags Metrics
// @Produce json
// @Param period query string false "7d, 30d or 90d (default 30d)"
// @Success 200 {object} utils.SuccessResponse{data=metric.Analytics,metadata=dto.ReadMetadata}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /metrics/analytics [get]
func (h *MetricsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	period, err := metric.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		utils.WriteError(w, errors.ValidationError(err.Error(), nil))
		return
	}

	data, err := h.service.Analytics(r.Context(), id.UserID, period)
	if err != nil {
		h.fail(w, r, id, err, "Failed to fetch analytics data")
		return
	}

	utils.WriteSuccessWithMetadata(w, http.StatusOK, data, dto.ReadMetadata{
		TotalRecords: data.Records,
		TimeRange:    data.Range,
	})
}

// TimeRange returns raw records between startDate and endDate
// @Summary Metrics in a time range
// @Tags Metrics
// @Produce json
// @Param startDate query string true "RFC 3339 timestamp or YYYY-MM-DD"
// @Param endDate query string true "RFC 3339 timestamp or YYYY-MM-DD"
// @Success 200 {object} utils.SuccessResponse{data=metric.RangeData,metadata=dto.ReadMetadata}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security BearerAuth
// @Router /metrics/time-range [get]
func (h *MetricsHandler) TimeRange(w http.ResponseWriter, r *http.Request) {
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	rawStart, rawEnd := q.Get("startDate"), q.Get("endDate")
	if rawStart == "" || rawEnd == "" {
		utils.WriteError(w, errors.ValidationError("startDate and endDate are required", nil))
		return
	}

	start, err := parseDate(rawStart)
	if err != nil {
		utils.WriteError(w, errors.ValidationError("startDate must be an RFC 3339 timestamp or YYYY-MM-DD", nil))
		return
	}
	end, err := parseDate(rawEnd)
	if err != nil {
		utils.WriteError(w, errors.ValidationError("endDate must be an RFC 3339 timestamp or YYYY-MM-DD", nil))
		return
	}

	data, err := h.service.TimeRange(r.Context(), id.UserID, start, end)
	if err != nil {
		h.fail(w, r, id, err, "Failed to fetch time range data")
		return
	}

	utils.WriteSuccessWithMetadata(w, http.StatusOK, data, dto.ReadMetadata{
		TotalRecords: data.Records,
		TimeRange:    data.Range,
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
