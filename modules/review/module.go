package review

import (
	"cfp-api/core/cache"
	"cfp-api/core/database"
	"cfp-api/core/middleware"
	"cfp-api/core/queue"
	activityService "cfp-api/modules/activity/service"
	eventService "cfp-api/modules/event/service"
	"cfp-api/modules/review/controller"
	"cfp-api/modules/review/repository"
	"cfp-api/modules/review/router"
	"cfp-api/modules/review/service"
	"cfp-api/modules/review/task"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

func Init(
	api *echo.Group,
	db database.Database,
	mw *middleware.Middleware,
	mux *asynq.ServeMux,
	c cache.Cache,
	dispatcher queue.Dispatcher,
	activity activityService.Publisher,
	events eventService.EventServiceInterface,
	submissions service.SubmissionLookup,
) service.ReviewServiceInterface {
	phaseRepo := repository.NewPhaseRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	phases := service.NewPhaseService(phaseRepo, c, activity)
	scores := service.NewScoreService(categoryRepo, reviewRepo, dispatcher, activity)
	reviews := service.NewReviewService(reviewRepo, categoryRepo, phases, submissions)

	ctrl := controller.NewReviewController(phases, scores, reviews, events)
	router.NewReviewRouter(ctrl).Register(api, mw)
	task.Register(mux, task.NewRecalculateHandler(events, scores))
	return reviews
}
