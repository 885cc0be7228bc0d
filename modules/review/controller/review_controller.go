package controller

import (
	"cfp-api/core/controller"
	"cfp-api/core/errors"
	"cfp-api/core/utils"
	eventService "cfp-api/modules/event/service"
	"cfp-api/modules/review/dto"
	"cfp-api/modules/review/service"

	"github.com/labstack/echo/v4"
)

type ReviewController struct {
	controller.BaseController
	phaseService  service.PhaseServiceInterface
	scoreService  service.ScoreServiceInterface
	reviewService service.ReviewServiceInterface
	eventService  eventService.EventServiceInterface
}

func NewReviewController(
	phases service.PhaseServiceInterface,
	scores service.ScoreServiceInterface,
	reviews service.ReviewServiceInterface,
	events eventService.EventServiceInterface,
) *ReviewController {
	return &ReviewController{
		BaseController: controller.NewBaseController(),
		phaseService:   phases,
		scoreService:   scores,
		reviewService:  reviews,
		eventService:   events,
	}
}

// ListPhases handles GET /events/:event/review-phases
// @Summary List review phases in order
// @Tags Review
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {array} entity.ReviewPhase
// @Router /private/events/{event}/review-phases [get]
func (c *ReviewController) ListPhases(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.phaseService.ListPhases(ctx.Request().Context(), event.ID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Review phases retrieved successfully")
}

// SavePhases handles PUT /events/:event/review-phases
// @Summary Replace the review phase list
// @Description Phases are reordered by start and end, then validated. Invalid orders are rejected as a whole.
// @Tags Review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.SavePhasesRequest true "Phases"
// @Success 200 {array} entity.ReviewPhase
// @Failure 400 {object} errors.AppError
// @Router /private/events/{event}/review-phases [put]
func (c *ReviewController) SavePhases(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.SavePhasesRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.phaseService.SavePhases(ctx.Request().Context(), event, claims.UserID, req.Phases)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Review phases saved successfully")
}

// ActivatePhase handles POST /events/:event/review-phases/:id/activate
// @Summary Make a review phase the active one
// @Tags Review
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param id path string true "Phase ID"
// @Success 200 {object} entity.ReviewPhase
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/review-phases/{id}/activate [post]
func (c *ReviewController) ActivatePhase(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	phaseID, err := utils.ToUUID(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid phase ID")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.phaseService.ActivatePhase(ctx.Request().Context(), event, claims.UserID, phaseID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Review phase activated successfully")
}

// ListCategories handles GET /events/:event/score-categories
// @Summary List score categories with their scales
// @Tags Review
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {array} entity.ScoreCategory
// @Router /private/events/{event}/score-categories [get]
func (c *ReviewController) ListCategories(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scoreService.ListCategories(ctx.Request().Context(), event.ID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Score categories retrieved successfully")
}

// SaveCategories handles PUT /events/:event/score-categories
// @Summary Replace the score category list
// @Description Queues a recalculation of all review scores when weights changed.
// @Tags Review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param request body dto.SaveCategoriesRequest true "Categories"
// @Success 200 {object} dto.SaveCategoriesResponse
// @Failure 400 {object} errors.AppError
// @Router /private/events/{event}/score-categories [put]
func (c *ReviewController) SaveCategories(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.SaveCategoriesRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	result, appErr := c.scoreService.SaveCategories(ctx.Request().Context(), event, claims.UserID, req.Categories)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Score categories saved successfully")
}

// RecalculateScores handles POST /events/:event/score-categories/recalculate
// @Summary Recalculate every review score of the event now
// @Tags Review
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Success 200 {object} dto.RecalculateResponse
// @Router /private/events/{event}/score-categories/recalculate [post]
func (c *ReviewController) RecalculateScores(ctx echo.Context) error {
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	updated, appErr := c.scoreService.RecalculateAll(ctx.Request().Context(), event.ID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.RecalculateResponse{Updated: updated}, "Review scores recalculated successfully")
}

// ListReviews handles GET /events/:event/reviews
// @Summary List reviews
// @Description Speaker and reviewer names are hidden according to the active review phase.
// @Tags Review
// @Security BearerAuth
// @Produce json
// @Param event path string true "Event slug"
// @Param submission query string false "Submission code"
// @Success 200 {array} dto.ReviewResponse
// @Router /private/events/{event}/reviews [get]
func (c *ReviewController) ListReviews(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	code := ctx.Param("code")
	if code == "" {
		code = ctx.QueryParam("submission")
	}
	result, appErr := c.reviewService.ListReviews(ctx.Request().Context(), event.ID, claims.UserID, code)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Reviews retrieved successfully")
}

// SubmitReview handles POST /events/:event/submissions/:code/reviews
// @Summary Create or replace the current user's review of a submission
// @Tags Review
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param event path string true "Event slug"
// @Param code path string true "Submission code"
// @Param request body dto.SubmitReviewRequest true "Review"
// @Success 200 {object} dto.ReviewResponse
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Router /private/events/{event}/submissions/{code}/reviews [post]
func (c *ReviewController) SubmitReview(ctx echo.Context) error {
	claims, appErr := controller.CurrentUser(ctx)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	var req dto.SubmitReviewRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid request body")
	}
	event, appErr := c.eventService.Resolve(ctx.Request().Context(), ctx.Param("event"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	reviewer := service.Reviewer{UserID: claims.UserID, Name: claims.DisplayName()}
	result, appErr := c.reviewService.SubmitReview(ctx.Request().Context(), event, ctx.Param("code"), reviewer, &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Review saved successfully")
}
