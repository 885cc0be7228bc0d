package schedule

import (
	"cfp-api/core/config"
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/core/queue"
	"cfp-api/core/storage"
	activityService "cfp-api/modules/activity/service"
	eventService "cfp-api/modules/event/service"
	"cfp-api/modules/schedule/controller"
	"cfp-api/modules/schedule/repository"
	"cfp-api/modules/schedule/router"
	"cfp-api/modules/schedule/service"
	"cfp-api/modules/schedule/task"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

func Init(
	api *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	mux *asynq.ServeMux,
	cfg *config.Config,
	dispatcher queue.Dispatcher,
	publisher storage.Publisher,
	activity activityService.Publisher,
	events eventService.EventServiceInterface,
	submissions service.SubmissionLookup,
) service.ScheduleServiceInterface {
	repo := repository.NewScheduleRepository(db)
	svc := service.NewScheduleService(repo, events, submissions, dispatcher, activity, cfg.Schedule.ChangeComparison)
	ctrl := controller.NewScheduleController(svc, events)
	router.NewScheduleRouter(ctrl).Register(api, mw)
	task.NewHandlers(events, svc, publisher, cfg.Storage.Prefix).Register(mux)
	return svc
}
