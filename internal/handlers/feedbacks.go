package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fevilela/GymFeedback/internal/common"
	"github.com/fevilela/GymFeedback/internal/models"
	"github.com/fevilela/GymFeedback/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var feedbackSubmissions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: "feedback",
		Name:      "submissions_total",
		Help:      "Feedback submissions grouped by outcome",
	},
	[]string{"outcome"},
)

type FeedbackHandler struct {
	common.ServerState
	Service *services.FeedbackService
}

func NewFeedbackHandler(state common.ServerState, service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{ServerState: state, Service: service}
}

type SubmitFeedbackRequest struct {
	Category  string `json:"category" validate:"required"`
	PersonID  *uint  `json:"personId"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Message   string `json:"message"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail" validate:"omitempty,email"`
	Unit      string `json:"unit"`
}

func (h *FeedbackHandler) Submit(c echo.Context) error {
	req := &SubmitFeedbackRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	feedback, err := h.Service.Submit(services.SubmitInput{
		Category:  models.Category(req.Category),
		PersonID:  req.PersonID,
		Rating:    req.Rating,
		Message:   req.Message,
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Unit:      req.Unit,
	})
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			feedbackSubmissions.WithLabelValues("invalid").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, validationErr.Message)
		case errors.Is(err, services.ErrDuplicateSubmission):
			feedbackSubmissions.WithLabelValues("duplicate").Inc()
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			feedbackSubmissions.WithLabelValues("error").Inc()
			c.Logger().Errorf("Failed to submit feedback: %v", err)
			CaptureError(err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to submit feedback")
		}
	}

	feedbackSubmissions.WithLabelValues("accepted").Inc()
	h.notifyChanged()
	return c.JSON(http.StatusCreated, feedback)
}

func (h *FeedbackHandler) List(c echo.Context) error {
	feedbacks, err := h.Store.ListFeedbacks()
	if err != nil {
		c.Logger().Errorf("Failed to list feedbacks: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list feedbacks")
	}
	return c.JSON(http.StatusOK, feedbacks)
}

// Dashboard recomputes the aggregated view for the given filter. The caller
// re-requests it after mutations; nothing is pushed.
func (h *FeedbackHandler) Dashboard(c echo.Context) error {
	filter, err := parseDashboardFilter(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	cacheKey := dashboardCacheKey(c)
	if h.Cache != nil {
		if cached, ok := h.Cache.Get(ctx, cacheKey); ok {
			return c.JSONBlob(http.StatusOK, cached)
		}
	}

	feedbacks, err := h.Store.ListFeedbacks()
	if err != nil {
		c.Logger().Errorf("Failed to list feedbacks: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute dashboard")
	}
	collabs, err := h.Store.ListCollaborators()
	if err != nil {
		c.Logger().Errorf("Failed to list collaborators: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to compute dashboard")
	}

	view := services.ComputeDashboard(feedbacks, collabs, filter)

	if h.Cache != nil {
		if payload, err := json.Marshal(view); err == nil {
			h.Cache.Set(ctx, cacheKey, payload)
		}
	}

	return c.JSON(http.StatusOK, view)
}

func parseDashboardFilter(c echo.Context) (services.DashboardFilter, error) {
	filter := services.DashboardFilter{}

	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid from date: %s", raw)
		}
		filter.From = &from
	}
	// A "to" without a "from" is ignored, matching the unfiltered view.
	if raw := c.QueryParam("to"); raw != "" && filter.From != nil {
		to, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid to date: %s", raw)
		}
		filter.To = &to
	}
	if raw := c.QueryParam("personId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid personId: %s", raw)
		}
		filter.PersonID = &id
	}
	filter.Unit = c.QueryParam("unit")

	return filter, nil
}

func dashboardCacheKey(c echo.Context) string {
	parts := []string{
		c.QueryParam("from"),
		c.QueryParam("to"),
		c.QueryParam("personId"),
		c.QueryParam("unit"),
	}
	return strings.Join(parts, ":")
}

func (h *FeedbackHandler) notifyChanged() {
	if h.Cache != nil {
		h.Cache.Invalidate(context.Background())
	}
	if h.Notifier != nil {
		h.Notifier.Broadcast("changed")
	}
}
