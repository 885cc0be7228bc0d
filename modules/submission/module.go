package submission

import (
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/core/queue"
	eventService "cfp-api/modules/event/service"
	"cfp-api/modules/submission/controller"
	"cfp-api/modules/submission/repository"
	"cfp-api/modules/submission/router"
	"cfp-api/modules/submission/service"

	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db database.Database, mw *middleware.Middleware, dispatcher queue.Dispatcher, events eventService.EventServiceInterface) service.SubmissionServiceInterface {
	repo := repository.NewSubmissionRepository(db)
	svc := service.NewSubmissionService(repo, dispatcher)
	ctrl := controller.NewSubmissionController(svc, events)
	router.NewSubmissionRouter(ctrl).Register(api, mw)
	return svc
}
