package activity

import (
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/modules/activity/controller"
	"cfp-api/modules/activity/repository"
	"cfp-api/modules/activity/router"
	"cfp-api/modules/activity/service"
	eventService "cfp-api/modules/event/service"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db database.Database, mw *middleware.Middleware, events eventService.EventServiceInterface) service.Publisher {
	repo := repository.NewActivityRepository(db)
	svc := service.NewActivityService(repo)
	ctrl := controller.NewActivityController(svc, events)
	router.NewActivityRouter(ctrl).Register(api, mw)
	return svc
}
