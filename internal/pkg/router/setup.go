package router

import (
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}

// basePaths are probed for views/ and public/ so the binaries and the
// package tests share one tree.
var basePaths = []string{
	"./",        // Current directory
	"../../",    // From cmd/smokecounter to project root
	"../../../", // From internal/pkg/router
}

// FindBasePath returns the first base path containing dir, or "".
func FindBasePath(dir string) string {
	for _, path := range basePaths {
		if _, err := os.Stat(path + dir); !os.IsNotExist(err) {
			return path
		}
	}
	return ""
}

// Metrics holds the basic auth credentials for /metrics. Empty disables auth.
type Metrics struct {
	User     string
	Password string
}

func newApp(views fiber.Views) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:                 views,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             64 * 1024,
		DisableStartupMessage: true,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	return app
}

func installMetrics(app *fiber.App, m Metrics) {
	if m.User == "" || m.Password == "" {
		app.Get("/metrics", monitor.New())
		return
	}
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			m.User: m.Password,
		},
	}), monitor.New())
}

func installStatic(app *fiber.App, basePath string) {
	if basePath == "" {
		return
	}
	app.Static("/assets", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})
}

func installSwagger(app *fiber.App, basePath string) {
	file := basePath + "public/docs/v1/openapi.yml"
	if _, err := os.Stat(file); err != nil {
		log.Warnf("[Router] OpenAPI document not found at %s, /docs/api disabled", file)
		return
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: file,
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))
}

func newViews(basePath string) fiber.Views {
	if basePath == "" {
		log.Warn("[Router] views directory not found, page rendering disabled")
		return nil
	}
	return html.New(basePath+"views", ".html")
}
