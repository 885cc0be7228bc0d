package announcement

import (
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/core/queue"
	activityService "cfp-api/modules/activity/service"
	"cfp-api/modules/announcement/controller"
	"cfp-api/modules/announcement/repository"
	"cfp-api/modules/announcement/router"
	"cfp-api/modules/announcement/service"
	"cfp-api/modules/announcement/task"
	eventService "cfp-api/modules/event/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

func Init(
	api *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	mux *asynq.ServeMux,
	dispatcher queue.Dispatcher,
	activity activityService.Publisher,
	events eventService.EventServiceInterface,
	notifier service.Notifier,
) service.AnnouncementServiceInterface {
	repo := repository.NewAnnouncementRepository(db)
	svc := service.NewAnnouncementService(repo, notifier, dispatcher, activity)
	ctrl := controller.NewAnnouncementController(svc, events)

	router.NewAnnouncementRouter(ctrl).Register(api, mw)
	task.Register(mux, task.NewAnnouncementPublishedHandler(events, svc))
	return svc
}
