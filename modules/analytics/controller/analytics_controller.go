package controller

import (
	"strconv"

	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/modules/analytics/service"
	eventService "cfp-api/modules/event/service"

	"github.com/labstack/echo/v4"
)

type AnalyticsController struct {
	controller.BaseController
	analytics service.AnalyticsServiceInterface
	events    eventService.EventServiceInterface
}

func NewAnalyticsController(analytics service.AnalyticsServiceInterface, events eventService.EventServiceInterface) *AnalyticsController {
	return &AnalyticsController{
		BaseController: controller.NewBaseController(),
		analytics:      analytics,
		events:         events,
	}
}

// GetMetrics handles GET /events/:event/metrics
// @Summary Daily metrics history for an event
// @Tags Analytics
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param days query int false "Number of days, default 30"
// @Success 200 {array} entity.EventMetric
// @Router /private/events/{event}/metrics [get]
func (c *AnalyticsController) GetMetrics(ctx echo.Context) error {
	days := 0
	if raw := ctx.QueryParam("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.BadRequest(errors.ErrInvalidInput, "days must be a positive integer")
		}
		days = n
	}

	event, appErr := c.events.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.analytics.History(ctx.Request().Context(), event.ID, days)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Metrics retrieved successfully")
}
