package controller

import (
	"strconv"
	"time"

	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/core/utils"
	eventService "cfp-api/modules/event/service"
	"cfp-api/modules/schedule/dto"
	"cfp-api/modules/schedule/service"

	"github.com/labstack/echo/v4"
)

type ScheduleController struct {
	controller.BaseController
	scheduleService service.ScheduleServiceInterface
	eventService    eventService.EventServiceInterface
}

func NewScheduleController(svc service.ScheduleServiceInterface, events eventService.EventServiceInterface) *ScheduleController {
	return &ScheduleController{
		BaseController:  controller.NewBaseController(),
		scheduleService: svc,
		eventService:    events,
	}
}

// CreateRoom handles POST /events/:event/rooms
// @Summary Add a room
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.CreateRoomRequest true "Room"
// @Success 201 {object} entity.Room
// @Router /private/events/{event}/rooms [post]
func (c *ScheduleController) CreateRoom(ctx echo.Context) error {
	var req dto.CreateRoomRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.CreateRoom(ctx.Request().Context(), event.ID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Room created successfully")
}

// ListRooms handles GET /events/:event/rooms
// @Summary List rooms
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {array} entity.Room
// @Router /private/events/{event}/rooms [get]
func (c *ScheduleController) ListRooms(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.ListRooms(ctx.Request().Context(), event.ID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Rooms retrieved successfully")
}

// GetDraft handles GET /events/:event/schedules/draft
// @Summary Get the draft schedule with all slots
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.ScheduleResponse
// @Router /private/events/{event}/schedules/draft [get]
func (c *ScheduleController) GetDraft(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.GetDraft(ctx.Request().Context(), event.ID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Draft schedule retrieved successfully")
}

// ListSchedules handles GET /events/:event/schedules
// @Summary List the draft and all released versions
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {array} entity.Schedule
// @Router /private/events/{event}/schedules [get]
func (c *ScheduleController) ListSchedules(ctx echo.Context) error {
	return c.listSchedules(ctx, false)
}

// ListReleasedSchedules handles GET /public/events/:event/schedules
// @Summary List released schedule versions
// @Tags Schedule
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {array} entity.Schedule
// @Router /public/events/{event}/schedules [get]
func (c *ScheduleController) ListReleasedSchedules(ctx echo.Context) error {
	return c.listSchedules(ctx, true)
}

func (c *ScheduleController) listSchedules(ctx echo.Context, releasedOnly bool) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.ListSchedules(ctx.Request().Context(), event.ID, releasedOnly)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Schedules retrieved successfully")
}

// GetSchedule handles GET /events/:event/schedules/:id
// @Summary Get a schedule with its slots
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Schedule ID"
// @Param only_visible query bool false "Hide invisible slots"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/schedules/{id} [get]
func (c *ScheduleController) GetSchedule(ctx echo.Context) error {
	return c.getSchedule(ctx, ctx.QueryParam("only_visible") == "true", false)
}

// GetReleasedSchedule handles GET /public/events/:event/schedules/:id
// @Summary Get a released schedule with its visible slots
// @Tags Schedule
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 404 {object} errors.AppError
// @Router /public/events/{event}/schedules/{id} [get]
func (c *ScheduleController) GetReleasedSchedule(ctx echo.Context) error {
	return c.getSchedule(ctx, true, true)
}

func (c *ScheduleController) getSchedule(ctx echo.Context, onlyVisible, releasedOnly bool) error {
	scheduleID, err := utils.ToUUID(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid schedule ID")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.GetSchedule(ctx.Request().Context(), event.ID, scheduleID, onlyVisible, releasedOnly)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Schedule retrieved successfully")
}

// Release handles POST /events/:event/schedules/release
// @Summary Release the draft as a new version
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.ReleaseRequest true "Version and comment"
// @Success 201 {object} dto.ScheduleResponse
// @Failure 400 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/events/{event}/schedules/release [post]
func (c *ScheduleController) Release(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.ReleaseRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.Release(ctx.Request().Context(), event, claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Schedule released successfully")
}

// ScheduleSubmission handles POST /events/:event/schedules/draft/slots
// @Summary Place a submission in the draft
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.ScheduleSubmissionRequest true "Slot"
// @Success 201 {object} entity.TalkSlot
// @Router /private/events/{event}/schedules/draft/slots [post]
func (c *ScheduleController) ScheduleSubmission(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.ScheduleSubmissionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.ScheduleSubmission(ctx.Request().Context(), event, claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Submission scheduled successfully")
}

// AddBreak handles POST /events/:event/schedules/draft/breaks
// @Summary Add a break or blocker to the draft
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.CreateBreakRequest true "Slot"
// @Success 201 {object} entity.TalkSlot
// @Router /private/events/{event}/schedules/draft/breaks [post]
func (c *ScheduleController) AddBreak(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.CreateBreakRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.AddBreak(ctx.Request().Context(), event, claims.UserID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Slot created successfully")
}

// UpdateSlot handles PATCH /events/:event/schedules/draft/slots/:id
// @Summary Edit a draft slot
// @Description End and description are locked while a submission is attached.
// @Tags Schedule
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Slot ID"
// @Param request body dto.UpdateSlotRequest true "Changes"
// @Success 200 {object} entity.TalkSlot
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/schedules/draft/slots/{id} [patch]
func (c *ScheduleController) UpdateSlot(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	slotID, err := utils.ToUUID(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid slot ID")
	}
	var req dto.UpdateSlotRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.UpdateSlot(ctx.Request().Context(), event, claims.UserID, slotID, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Slot updated successfully")
}

// DeleteSlot handles DELETE /events/:event/schedules/draft/slots/:id
// @Summary Remove a draft slot
// @Tags Schedule
// @Security BearerAuth
// @Param event path string true "Event slug"
// @Param id path string true "Slot ID"
// @Success 200 {object} nil
// @Router /private/events/{event}/schedules/draft/slots/{id} [delete]
func (c *ScheduleController) DeleteSlot(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	slotID, err := utils.ToUUID(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid slot ID")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	if appErr := c.scheduleService.DeleteSlot(ctx.Request().Context(), event, claims.UserID, slotID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Slot deleted successfully")
}

// FreeSlots handles GET /events/:event/schedules/draft/free-slots
// @Summary Find free start times in a room of the draft schedule
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param room query string true "Room ID"
// @Param from query string true "Window start, RFC 3339"
// @Param to query string true "Window end, RFC 3339"
// @Param duration query int true "Talk length in minutes"
// @Success 200 {array} service.TimeRange
// @Failure 400 {object} errors.AppError
// @Router /private/events/{event}/schedules/draft/free-slots [get]
func (c *ScheduleController) FreeSlots(ctx echo.Context) error {
	roomID, err := utils.ToUUID(ctx.QueryParam("room"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid room ID")
	}
	req := &dto.FreeSlotsRequest{RoomID: roomID}
	if req.From, err = timeParam(ctx, "from"); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid 'from' time, use RFC 3339")
	}
	if req.To, err = timeParam(ctx, "to"); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid 'to' time, use RFC 3339")
	}
	if raw := ctx.QueryParam("duration"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "Invalid duration")
		}
		req.DurationMinutes = n
	}

	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scheduleService.FreeSlots(ctx.Request().Context(), event.ID, req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Free slots retrieved successfully")
}

func timeParam(ctx echo.Context, name string) (*time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// RefreshUnreleasedChanges handles POST /events/:event/schedules/draft/changes
// @Summary Recompute whether the draft differs from the latest release
// @Tags Schedule
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.UnreleasedChangesResponse
// @Router /private/events/{event}/schedules/draft/changes [post]
func (c *ScheduleController) RefreshUnreleasedChanges(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	changed, appErr := c.scheduleService.UpdateUnreleasedChanges(ctx.Request().Context(), event.ID, nil)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.UnreleasedChangesResponse{HasUnreleasedChanges: changed}, "Unreleased changes updated successfully")
}
