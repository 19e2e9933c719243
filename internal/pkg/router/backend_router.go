package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/SmokeCounter/app/controllers"
	"github.com/ManuelReschke/SmokeCounter/app/repository"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/config"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/middleware"
)

// BackendRouter serves the persistence API the widget talks to.
type BackendRouter struct {
	counter *controllers.CounterController
	cfg     *config.Server
}

func NewBackendRouter(repo repository.CounterRepository, cfg *config.Server) *BackendRouter {
	return &BackendRouter{
		counter: controllers.NewCounterController(repo),
		cfg:     cfg,
	}
}

func (b BackendRouter) InstallRouter(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: b.cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, " + middleware.AdminPasswordHeader,
	}))

	app.Get("/healthz", b.counter.HandleHealth)

	api := app.Group("", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	api.Get("/counter", b.counter.HandleGetCounter)
	api.Post("/counter", b.counter.HandlePostCounter)

	admin := middleware.AdminPasswordMiddleware(middleware.AdminSecret{
		Password: b.cfg.AdminPassword,
		Hash:     b.cfg.AdminPasswordHash,
	})
	api.Post("/reset", admin, b.counter.HandleReset)
}

// NewBackendApp builds the persistence service.
func NewBackendApp(repo repository.CounterRepository, cfg *config.Server) *fiber.App {
	basePath := FindBasePath("public")
	app := newApp(nil)

	installMetrics(app, Metrics{User: cfg.MetricsUser, Password: cfg.MetricsPassword})
	installSwagger(app, basePath)

	setup(app, NewBackendRouter(repo, cfg))
	return app
}
