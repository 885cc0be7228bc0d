package controller

import (
	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/core/params"
	"cfp-api/modules/event/dto"
	"cfp-api/modules/event/service"

	"github.com/labstack/echo/v4"
)

type EventController struct {
	controller.BaseController
	EventService service.EventServiceInterface
}

func NewEventController(svc service.EventServiceInterface) *EventController {
	return &EventController{
		BaseController: controller.NewBaseController(),
		EventService:   svc,
	}
}

// CreateEvent handles POST /events
// @Summary Create an event
// @Tags Event
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateEventRequest true "Event"
// @Success 201 {object} dto.EventResponse
// @Failure 400 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/events [post]
func (c *EventController) CreateEvent(ctx echo.Context) error {
	var req dto.CreateEventRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}

	result, appErr := c.EventService.CreateEvent(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Event created successfully")
}

// ListEvents handles GET /events
// @Summary List events
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} entity.PaginatedEventEntity
// @Router /private/events [get]
func (c *EventController) ListEvents(ctx echo.Context) error {
	result, appErr := c.EventService.ListEvents(ctx.Request().Context(), *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Events retrieved successfully")
}

// GetEvent handles GET /events/:event
// @Summary Get an event by slug
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.EventResponse
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event} [get]
func (c *EventController) GetEvent(ctx echo.Context) error {
	result, appErr := c.EventService.GetEvent(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Event retrieved successfully")
}

// AddFavourite handles POST /events/:event/favourite
// @Summary Mark an event as favourite
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.FavouriteResponse
// @Failure 409 {object} errors.AppError
// @Router /private/events/{event}/favourite [post]
func (c *EventController) AddFavourite(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.EventService.AddFavourite(ctx.Request().Context(), ctx.Param("event"), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Favourite added")
}

// RemoveFavourite handles DELETE /events/:event/favourite
// @Summary Remove an event from favourites
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.FavouriteResponse
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/favourite [delete]
func (c *EventController) RemoveFavourite(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.EventService.RemoveFavourite(ctx.Request().Context(), ctx.Param("event"), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Favourite removed")
}

// IsFavourite handles GET /events/:event/favourite
// @Summary Check whether an event is a favourite
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.FavouriteResponse
// @Router /private/events/{event}/favourite [get]
func (c *EventController) IsFavourite(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.EventService.IsFavourite(ctx.Request().Context(), ctx.Param("event"), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Favourite status retrieved")
}

// ListFavourites handles GET /favourites
// @Summary List my favourite events
// @Tags Event
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.EventResponse
// @Router /private/favourites [get]
func (c *EventController) ListFavourites(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.EventService.ListFavourites(ctx.Request().Context(), claims.UserID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Favourites retrieved successfully")
}
