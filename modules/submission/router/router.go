package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/submission/controller"

	"github.com/labstack/echo/v4"
)

type SubmissionRouter struct {
	controller *controller.SubmissionController
}

func NewSubmissionRouter(controller *controller.SubmissionController) *SubmissionRouter {
	return &SubmissionRouter{controller: controller}
}

func (r *SubmissionRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	group := api.Group("/private/events/:event/submissions", mw.AuthMiddleware())
	group.POST("", r.controller.CreateSubmission)
	group.GET("", r.controller.ListSubmissions)
	group.GET("/:code", r.controller.GetSubmission)
	group.PATCH("/:code", r.controller.UpdateSubmission)
}
