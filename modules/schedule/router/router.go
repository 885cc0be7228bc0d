package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/schedule/controller"

	"github.com/labstack/echo/v4"
)

type ScheduleRouter struct {
	controller *controller.ScheduleController
}

func NewScheduleRouter(controller *controller.ScheduleController) *ScheduleRouter {
	return &ScheduleRouter{controller: controller}
}

func (r *ScheduleRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	public := api.Group("/public/events/:event/schedules")
	public.GET("", r.controller.ListReleasedSchedules)
	public.GET("/:id", r.controller.GetReleasedSchedule)

	event := api.Group("/private/events/:event", mw.AuthMiddleware())
	event.POST("/rooms", r.controller.CreateRoom)
	event.GET("/rooms", r.controller.ListRooms)

	event.GET("/schedules", r.controller.ListSchedules)
	event.GET("/schedules/draft", r.controller.GetDraft)
	event.POST("/schedules/release", r.controller.Release)
	event.POST("/schedules/draft/slots", r.controller.ScheduleSubmission)
	event.POST("/schedules/draft/breaks", r.controller.AddBreak)
	event.PATCH("/schedules/draft/slots/:id", r.controller.UpdateSlot)
	event.DELETE("/schedules/draft/slots/:id", r.controller.DeleteSlot)
	event.POST("/schedules/draft/changes", r.controller.RefreshUnreleasedChanges)
	event.GET("/schedules/draft/free-slots", r.controller.FreeSlots)
	event.GET("/schedules/:id", r.controller.GetSchedule)
}
