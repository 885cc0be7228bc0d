package analytics

import (
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/modules/analytics/controller"
	"cfp-api/modules/analytics/repository"
	"cfp-api/modules/analytics/router"
	"cfp-api/modules/analytics/service"
	"cfp-api/modules/analytics/task"
	eventService "cfp-api/modules/event/service"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

func Init(api *echo.Group, db database.Database, mw *middleware.Middleware, mux *asynq.ServeMux, events eventService.EventServiceInterface) service.AnalyticsServiceInterface {
	repo := repository.NewMetricsRepository(db)
	svc := service.NewAnalyticsService(repo, events)
	ctrl := controller.NewAnalyticsController(svc, events)
	router.NewAnalyticsRouter(ctrl).Register(api, mw)
	task.Register(mux, task.NewSnapshotHandler(svc))
	return svc
}
