package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/activity/controller"

	"github.com/labstack/echo/v4"
)

type ActivityRouter struct {
	controller *controller.ActivityController
}

func NewActivityRouter(controller *controller.ActivityController) *ActivityRouter {
	return &ActivityRouter{controller: controller}
}

func (r *ActivityRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	group := api.Group("/private/events/:event/activity", mw.AuthMiddleware())
	group.GET("", r.controller.ListActivity)
}
