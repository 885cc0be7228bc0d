package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/announcement/controller"

	"github.com/labstack/echo/v4"
)

type AnnouncementRouter struct {
	controller *controller.AnnouncementController
}

func NewAnnouncementRouter(controller *controller.AnnouncementController) *AnnouncementRouter {
	return &AnnouncementRouter{controller: controller}
}

func (r *AnnouncementRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	group := api.Group("/private/events/:event/announcements", mw.AuthMiddleware())
	group.GET("", r.controller.List)
	group.POST("", r.controller.Create)
	group.GET("/:id", r.controller.Get)
	group.PUT("/:id", r.controller.Update)
	group.DELETE("/:id", r.controller.Delete)
	group.POST("/:id/publish", r.controller.Publish)
}
