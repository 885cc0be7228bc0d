package event

import (
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/modules/event/controller"
	"cfp-api/modules/event/repository"
	"cfp-api/modules/event/router"
	"cfp-api/modules/event/service"

	"github.com/labstack/echo/v4"
)

// Init wires the event module and returns its service; the other modules
// resolve event slugs through it.
func Init(api *echo.Group, db database.Database, mw *middleware.Middleware) service.EventServiceInterface {
	repo := repository.NewEventRepository(db)
	svc := service.NewEventService(repo)
	ctrl := controller.NewEventController(svc)
	router.NewEventRouter(ctrl).Register(api, mw)
	return svc
}
