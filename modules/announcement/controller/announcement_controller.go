package controller

import (
	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/core/params"
	"cfp-api/core/utils"
	"cfp-api/modules/announcement/dto"
	"cfp-api/modules/announcement/service"
	eventService "cfp-api/modules/event/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AnnouncementController struct {
	controller.BaseController
	service      service.AnnouncementServiceInterface
	eventService eventService.EventServiceInterface
}

func NewAnnouncementController(service service.AnnouncementServiceInterface, events eventService.EventServiceInterface) *AnnouncementController {
	return &AnnouncementController{
		BaseController: controller.NewBaseController(),
		service:        service,
		eventService:   events,
	}
}

func announcementID(ctx echo.Context) (uuid.UUID, error) {
	return utils.ToUUID(ctx.Param("id"))
}

// List handles GET /events/:event/announcements
// @Summary List announcements, newest first
// @Tags Announcement
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} entity.PaginatedAnnouncementEntity
// @Router /private/events/{event}/announcements [get]
func (c *AnnouncementController) List(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.service.List(ctx.Request().Context(), event.ID, *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Announcements retrieved successfully")
}

// Get handles GET /events/:event/announcements/:id
// @Summary Get an announcement
// @Tags Announcement
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Announcement ID"
// @Success 200 {object} entity.Announcement
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/announcements/{id} [get]
func (c *AnnouncementController) Get(ctx echo.Context) error {
	id, err := announcementID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid announcement ID")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.service.Get(ctx.Request().Context(), event.ID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Announcement retrieved successfully")
}

// Create handles POST /events/:event/announcements
// @Summary Draft an announcement
// @Tags Announcement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 201 {object} entity.Announcement
// @Failure 400 {object} errors.AppError
// @Router /private/events/{event}/announcements [post]
func (c *AnnouncementController) Create(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.AnnouncementRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.service.Create(ctx.Request().Context(), event, claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Announcement created successfully")
}

// Update handles PUT /events/:event/announcements/:id
// @Summary Replace an announcement's content and audience
// @Tags Announcement
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Announcement ID"
// @Param request body dto.AnnouncementRequest true "Announcement"
// @Success 200 {object} entity.Announcement
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/announcements/{id} [put]
func (c *AnnouncementController) Update(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := announcementID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid announcement ID")
	}
	var req dto.AnnouncementRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.service.Update(ctx.Request().Context(), event, claims.UserID, id, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Announcement updated successfully")
}

// Delete handles DELETE /events/:event/announcements/:id
// @Summary Delete an announcement
// @Tags Announcement
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Announcement ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/announcements/{id} [delete]
func (c *AnnouncementController) Delete(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := announcementID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid announcement ID")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	if appErr := c.service.Delete(ctx.Request().Context(), event, claims.UserID, id); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Announcement deleted successfully")
}

// Publish handles POST /events/:event/announcements/:id/publish
// @Summary Publish an announcement
// @Description The first publish queues notifications when send_notifications is set. Publishing again changes nothing.
// @Tags Announcement
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Announcement ID"
// @Success 200 {object} dto.PublishResponse
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/announcements/{id}/publish [post]
func (c *AnnouncementController) Publish(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	id, err := announcementID(ctx)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid announcement ID")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.service.Publish(ctx.Request().Context(), event, claims.UserID, id)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	if result.AlreadyPublished {
		return c.SuccessResponse(ctx, result, "Announcement was already published")
	}
	return c.SuccessResponse(ctx, result, "Announcement published successfully")
}
