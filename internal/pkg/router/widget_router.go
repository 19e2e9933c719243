package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/SmokeCounter/app/controllers"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/aquarium"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

// WidgetRouter serves the counter page and the aquarium.
type WidgetRouter struct {
	widget *controllers.WidgetController
}

func NewWidgetRouter(manager *tracker.Manager, tank *aquarium.Aquarium) *WidgetRouter {
	return &WidgetRouter{widget: controllers.NewWidgetController(manager, tank)}
}

func (w WidgetRouter) InstallRouter(app *fiber.App) {
	app.Get("/", w.widget.HandleIndex)
	app.Post("/smoke/:bucket", w.widget.HandleSmoke)
	app.Get("/state", w.widget.HandleState)
	app.Get("/aquarium", w.widget.HandleAquarium)
	app.Get("/aquarium.png", w.widget.HandleAquariumPNG)
}

// NewWidgetApp builds the widget page server.
func NewWidgetApp(manager *tracker.Manager, tank *aquarium.Aquarium, metrics Metrics) *fiber.App {
	basePath := FindBasePath("views")
	app := newApp(newViews(basePath))

	installMetrics(app, metrics)
	installStatic(app, basePath)

	setup(app, NewWidgetRouter(manager, tank))
	return app
}
