package controller

import (
	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/core/params"
	eventService "cfp-api/modules/event/service"
	"cfp-api/modules/submission/dto"
	"cfp-api/modules/submission/service"

	"github.com/labstack/echo/v4"
)

type SubmissionController struct {
	controller.BaseController
	submissionService service.SubmissionServiceInterface
	eventService      eventService.EventServiceInterface
}

func NewSubmissionController(svc service.SubmissionServiceInterface, events eventService.EventServiceInterface) *SubmissionController {
	return &SubmissionController{
		BaseController:    controller.NewBaseController(),
		submissionService: svc,
		eventService:      events,
	}
}

// CreateSubmission handles POST /events/:event/submissions
// @Summary Submit a proposal
// @Tags Submission
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.CreateSubmissionRequest true "Submission"
// @Success 201 {object} dto.SubmissionResponse
// @Failure 400 {object} errors.AppError
// @Router /private/events/{event}/submissions [post]
func (c *SubmissionController) CreateSubmission(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.CreateSubmissionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	author := service.Author{UserID: claims.UserID, Name: claims.DisplayName()}
	result, appErr := c.submissionService.CreateSubmission(ctx.Request().Context(), event, author, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Submission created successfully")
}

// ListSubmissions handles GET /events/:event/submissions
// @Summary List submissions
// @Tags Submission
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param state query string false "Filter by state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} entity.PaginatedSubmissionEntity
// @Router /private/events/{event}/submissions [get]
func (c *SubmissionController) ListSubmissions(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.submissionService.ListSubmissions(ctx.Request().Context(), event.ID, ctx.QueryParam("state"), *params.NewQueryParams(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Submissions retrieved successfully")
}

// GetSubmission handles GET /events/:event/submissions/:code
// @Summary Get a submission by code
// @Tags Submission
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param code path string true "Submission code"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/submissions/{code} [get]
func (c *SubmissionController) GetSubmission(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.submissionService.GetSubmission(ctx.Request().Context(), event.ID, ctx.Param("code"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Submission retrieved successfully")
}

// UpdateSubmission handles PATCH /events/:event/submissions/:code
// @Summary Update title, abstract, duration or state
// @Description Duration and abstract changes are copied to the submission's draft slots.
// @Tags Submission
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param code path string true "Submission code"
// @Param request body dto.UpdateSubmissionRequest true "Changes"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/submissions/{code} [patch]
func (c *SubmissionController) UpdateSubmission(ctx echo.Context) error {
	var req dto.UpdateSubmissionRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.submissionService.UpdateSubmission(ctx.Request().Context(), event, ctx.Param("code"), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Submission updated successfully")
}
