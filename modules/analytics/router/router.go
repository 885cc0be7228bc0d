package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/analytics/controller"

	"github.com/labstack/echo/v4"
)

type AnalyticsRouter struct {
	controller *controller.AnalyticsController
}

func NewAnalyticsRouter(controller *controller.AnalyticsController) *AnalyticsRouter {
	return &AnalyticsRouter{controller: controller}
}

func (r *AnalyticsRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	event := api.Group("/private/events/:event", mw.AuthMiddleware())
	event.GET("/metrics", r.controller.GetMetrics)
}
