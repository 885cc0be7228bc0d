package router

import (
	"cfp-api/core/middleware"
	"cfp-api/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	EventController *controller.EventController
}

func NewEventRouter(eventController *controller.EventController) *EventRouter {
	return &EventRouter{EventController: eventController}
}

func (r *EventRouter) Register(api *echo.Group, mw *middleware.Middleware) {
	private := api.Group("/private", mw.AuthMiddleware())

	events := private.Group("/events")
	events.POST("", r.EventController.CreateEvent)
	events.GET("", r.EventController.ListEvents)
	events.GET("/:event", r.EventController.GetEvent)
	events.GET("/:event/favourite", r.EventController.IsFavourite)
	events.POST("/:event/favourite", r.EventController.AddFavourite)
	events.DELETE("/:event/favourite", r.EventController.RemoveFavourite)

	private.GET("/favourites", r.EventController.ListFavourites)
}
