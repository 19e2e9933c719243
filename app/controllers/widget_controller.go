package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/ManuelReschke/SmokeCounter/internal/pkg/aquarium"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tracker"
)

const (
	// DefaultFramePoints is the outline resolution sent to the page.
	DefaultFramePoints = 256
	// DefaultPreviewSize is the long side of /aquarium.png.
	DefaultPreviewSize = 400
	maxPreviewSize     = 2000
)

// ============================================================================
// WIDGET CONTROLLER - counter page and aquarium
// ============================================================================

// WidgetController serves the counter page on top of a tracker.Manager
type WidgetController struct {
	manager *tracker.Manager
	tank    *aquarium.Aquarium
}

// NewWidgetController creates a new widget controller
func NewWidgetController(manager *tracker.Manager, tank *aquarium.Aquarium) *WidgetController {
	return &WidgetController{manager: manager, tank: tank}
}

// HandleIndex renders the two counter boxes.
func (wc *WidgetController) HandleIndex(c *fiber.Ctx) error {
	rec := wc.manager.Snapshot()
	return c.Render("widget", fiber.Map{
		"Record":      rec,
		"BucketA":     tally.BucketA,
		"BucketB":     tally.BucketB,
		"Flash":       flash.Get(c),
		"FramePoints": DefaultFramePoints,
		"FrameMillis": wc.tank.Config().FrameInterval.Milliseconds(),
	})
}

// HandleSmoke records one event in the bucket from the URL.
func (wc *WidgetController) HandleSmoke(c *fiber.Ctx) error {
	wantsJSON := c.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON

	bucket, err := tally.ParseBucket(c.Params("bucket"))
	if err != nil {
		if wantsJSON {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown counter"})
		}
		fm := fiber.Map{
			"type":    "error",
			"message": "Unknown counter",
		}
		return flash.WithError(c, fm).Redirect("/")
	}

	rec := wc.manager.Increment(c.UserContext(), bucket)
	if wc.tank.OnIncrement() {
		log.Debug("[Widget] Bonus fish spawned")
	}

	if wantsJSON {
		return c.JSON(rec.Payload())
	}

	fm := fiber.Map{
		"type":    "success",
		"message": fmt.Sprintf("Logged. %d today.", rec.Total()),
	}
	return flash.WithSuccess(c, fm).Redirect("/")
}

// HandleState returns the in-memory record.
func (wc *WidgetController) HandleState(c *fiber.Ctx) error {
	return c.JSON(wc.manager.Snapshot().Payload())
}

// HandleAquarium returns the current frame. ?points= sets the outline
// resolution, capped at the configured curve points.
func (wc *WidgetController) HandleAquarium(c *fiber.Ctx) error {
	points := c.QueryInt("points", DefaultFramePoints)
	points = min(points, wc.tank.Config().CurvePoints)
	return c.JSON(wc.tank.Frame(points))
}

// HandleAquariumPNG renders a still of the current frame.
func (wc *WidgetController) HandleAquariumPNG(c *fiber.Ctx) error {
	size := c.QueryInt("size", DefaultPreviewSize)
	if size <= 0 || size > maxPreviewSize {
		size = DefaultPreviewSize
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	if err := aquarium.RenderPNG(c.Response().BodyWriter(), wc.tank.Frame(wc.tank.Config().CurvePoints), size); err != nil {
		log.Errorf("[Widget] Error rendering aquarium preview: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
	return nil
}
