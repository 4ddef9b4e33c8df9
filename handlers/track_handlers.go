package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/analytics"
	"dwellmetrics/api/middleware"
	"dwellmetrics/api/models"
	"dwellmetrics/api/store"
	"dwellmetrics/api/utils"
)

// IngestRecorder counts stored events per action type.
type IngestRecorder interface {
	RecordIngested(counts map[string]int)
}

type nopIngestRecorder struct{}

func (nopIngestRecorder) RecordIngested(map[string]int) {}

// TrackingConfig tunes TrackingHandlers.
type TrackingConfig struct {
	IngestTimeout time.Duration
	QueryTimeout  time.Duration
	Ingested      IngestRecorder
}

type TrackingHandlers struct {
	events  store.EventStore
	reports *analytics.Service
	cfg     TrackingConfig
	logger  logrus.FieldLogger
}

func NewTrackingHandlers(events store.EventStore, reports *analytics.Service, cfg TrackingConfig, logger logrus.FieldLogger) *TrackingHandlers {
	if cfg.IngestTimeout <= 0 {
		cfg.IngestTimeout = 15 * time.Second
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = analytics.DefaultQueryTimeout
	}
	if cfg.Ingested == nil {
		cfg.Ingested = nopIngestRecorder{}
	}
	return &TrackingHandlers{events: events, reports: reports, cfg: cfg, logger: logger}
}

// TrackEvents stores a batch of client actions for the caller. Actions
// without a session id take X-Session-ID, or one generated per request.
func (h *TrackingHandlers) TrackEvents(c *gin.Context) {
	userID, ok := h.trackingUser(c)
	if !ok {
		return
	}

	var actions []models.TrackAction
	if err := c.ShouldBindJSON(&actions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Actions must be an array", "details": err.Error()})
		return
	}

	fallbackSession := c.GetHeader("X-Session-ID")
	if fallbackSession == "" {
		fallbackSession = utils.GenerateSessionID()
	}

	now := time.Now()
	events := make([]models.TrackingEvent, 0, len(actions))
	counts := make(map[string]int)
	skipped := 0
	for _, action := range actions {
		event := action.Event(userID, now)
		if !event.Type.Known() {
			skipped++
			continue
		}
		if event.SessionID == "" {
			event.SessionID = fallbackSession
		}
		event.EventID = uuid.New().String()
		events = append(events, event)
		counts[string(event.Type)]++
	}

	if len(events) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.IngestTimeout)
		defer cancel()

		if err := h.events.InsertEvents(ctx, events); err != nil {
			h.logger.WithError(err).WithField("count", len(events)).Error("Failed to store tracking actions")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to track actions"})
			return
		}
		h.cfg.Ingested.RecordIngested(counts)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"saved_count":   len(events),
		"skipped_count": skipped,
		"action_counts": counts,
	})
}

// GetTrackingData returns the composite report for any user. Admin only.
func (h *TrackingHandlers) GetTrackingData(c *gin.Context) {
	q, ok := parseReportQuery(c)
	if !ok {
		return
	}
	q.UserID = c.Query("user_id")
	h.writeReport(c, q)
}

// GetMyTrackingData returns the composite report scoped to the caller.
func (h *TrackingHandlers) GetMyTrackingData(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	q, ok := parseReportQuery(c)
	if !ok {
		return
	}
	q.UserID = userID
	h.writeReport(c, q)
}

// GetUniquePaths lists distinct page URLs for filter dropdowns.
func (h *TrackingHandlers) GetUniquePaths(c *gin.Context) {
	userID, ok := scopedUser(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.QueryTimeout)
	defer cancel()

	paths, err := h.events.ListPaths(ctx, userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list unique paths")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Tracking data unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"paths": paths})
}

// GetSessions lists recent sessions with their action counts.
func (h *TrackingHandlers) GetSessions(c *gin.Context) {
	userID, ok := scopedUser(c)
	if !ok {
		return
	}
	limit, err := utils.ParseLimit(c.Query("limit"), store.DefaultSessionLimit, store.MaxSessionLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.QueryTimeout)
	defer cancel()

	sessions, err := h.events.ListSessions(ctx, userID, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sessions")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Tracking data unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *TrackingHandlers) writeReport(c *gin.Context, q analytics.Query) {
	report, err := h.reports.Report(c.Request.Context(), q)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, report)
	case errors.Is(err, analytics.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, analytics.ErrDataUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Tracking data unavailable"})
	default:
		h.logger.WithError(err).Error("Failed to build tracking report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get tracking data"})
	}
}

// trackingUser resolves who ingested actions belong to. The service
// principal names the user with X-User-ID.
func (h *TrackingHandlers) trackingUser(c *gin.Context) (string, bool) {
	if c.GetString(middleware.ContextUserRole) == models.RoleService {
		if id := c.GetHeader("X-User-ID"); id != "" {
			return id, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header is required with an API key"})
		return "", false
	}
	return requireUser(c)
}

func parseReportQuery(c *gin.Context) (analytics.Query, bool) {
	start, err := utils.ParseTimeParam("start", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analytics.Query{}, false
	}
	end, err := utils.ParseTimeParam("end", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analytics.Query{}, false
	}
	loc, err := utils.ParseLocation(c.Query("tz"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analytics.Query{}, false
	}
	return analytics.Query{
		Path:      c.Query("path"),
		DateRange: c.Query("date_range"),
		Start:     start,
		End:       end,
		Location:  loc,
	}, true
}

// requireUser returns the caller's user id, rejecting the service principal.
func requireUser(c *gin.Context) (string, bool) {
	id := c.GetInt(middleware.ContextUserID)
	if id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return utils.UserKey(id), true
}

// scopedUser lets admins pick any user_id (empty for all) and pins everyone
// else to themselves.
func scopedUser(c *gin.Context) (string, bool) {
	if models.IsAdminRole(c.GetString(middleware.ContextUserRole)) {
		return c.Query("user_id"), true
	}
	return requireUser(c)
}
