package notification

import (
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/modules/notification/controller"
	"cfp-api/modules/notification/repository"
	"cfp-api/modules/notification/router"
	"cfp-api/modules/notification/service"
	"cfp-api/modules/notification/task"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

func Init(e *echo.Group, db database.Database, mw *middleware.Middleware, mux *asynq.ServeMux, events task.EventResolver, schedules task.ReleaseLoader, speakers task.SpeakerLookup) service.NotificationServiceInterface {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Register(e, mw)
	task.Register(mux, task.NewScheduleReleasedHandler(events, schedules, speakers, svc))

	return svc
}
