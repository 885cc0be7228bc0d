package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/review/controller"

	"github.com/labstack/echo/v4"
)

type ReviewRouter struct {
	controller *controller.ReviewController
}

func NewReviewRouter(controller *controller.ReviewController) *ReviewRouter {
	return &ReviewRouter{controller: controller}
}

func (r *ReviewRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	event := api.Group("/private/events/:event", mw.AuthMiddleware())

	event.GET("/review-phases", r.controller.ListPhases)
	event.PUT("/review-phases", r.controller.SavePhases)
	event.POST("/review-phases/:id/activate", r.controller.ActivatePhase)

	event.GET("/score-categories", r.controller.ListCategories)
	event.PUT("/score-categories", r.controller.SaveCategories)
	event.POST("/score-categories/recalculate", r.controller.RecalculateScores)

	event.GET("/reviews", r.controller.ListReviews)
	event.GET("/submissions/:code/reviews", r.controller.ListReviews)
	event.POST("/submissions/:code/reviews", r.controller.SubmitReview)
}
