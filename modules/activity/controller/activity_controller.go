package controller

import (
	"cfp-api/core/controller"
	"cfp-api/core/params"
	"cfp-api/modules/activity/service"
	eventService "cfp-api/modules/event/service"

	"github.com/labstack/echo/v4"
)

type ActivityController struct {
	controller.BaseController
	activityService service.ActivityServiceInterface
	eventService    eventService.EventServiceInterface
}

func NewActivityController(svc service.ActivityServiceInterface, events eventService.EventServiceInterface) *ActivityController {
	return &ActivityController{
		BaseController:  controller.NewBaseController(),
		activityService: svc,
		eventService:    events,
	}
}

// ListActivity handles GET /events/:event/activity
// @Summary List the activity log of an event
// @Tags Activity
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} entity.PaginatedEntryEntity
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/activity [get]
func (c *ActivityController) ListActivity(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.activityService.ListActivity(ctx.Request().Context(), event.ID, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Activity retrieved successfully")
}
