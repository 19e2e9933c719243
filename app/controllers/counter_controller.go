package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SmokeCounter/app/repository"
	"github.com/ManuelReschke/SmokeCounter/internal/pkg/tally"
)

// ============================================================================
// COUNTER CONTROLLER - persistence backend API
// ============================================================================

// CounterController serves GET/POST /counter and POST /reset
type CounterController struct {
	repo     repository.CounterRepository
	now      func() time.Time
	validate *validator.Validate
}

// NewCounterController creates a new counter controller with repository
func NewCounterController(repo repository.CounterRepository) *CounterController {
	return &CounterController{
		repo:     repo,
		now:      time.Now,
		validate: validator.New(),
	}
}

// counterRequest accepts both the current body and the single "count" sent
// by old widgets. Pointers distinguish absent from zero.
type counterRequest struct {
	Date       string   `json:"date" validate:"required,max=32"`
	Count      *float64 `json:"count" validate:"omitempty,gte=0"`
	TotalCount *float64 `json:"totalCount" validate:"omitempty,gte=0"`
	CountA     *float64 `json:"countA" validate:"omitempty,gte=0"`
	CountB     *float64 `json:"countB" validate:"omitempty,gte=0"`
}

func (r counterRequest) record() tally.Record {
	if r.CountA != nil || r.CountB != nil {
		return tally.Record{Date: r.Date, CountA: floorCount(r.CountA), CountB: floorCount(r.CountB)}
	}
	total := r.TotalCount
	if total == nil {
		total = r.Count
	}
	a, b := tally.Split(floorCount(total))
	return tally.Record{Date: r.Date, CountA: a, CountB: b}
}

func (r counterRequest) hasCount() bool {
	return r.Count != nil || r.TotalCount != nil || r.CountA != nil || r.CountB != nil
}

func floorCount(v *float64) int {
	if v == nil {
		return 0
	}
	return tally.CoerceFloat(*v)
}

// HandleGetCounter returns today's counts, zero when nothing is stored.
func (cc *CounterController) HandleGetCounter(c *fiber.Ctx) error {
	today := tally.DateKey(cc.now())

	stored, err := cc.repo.Get(c.UserContext(), today)
	if err != nil {
		log.Errorf("[Counter] Error getting counter: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	rec := tally.Zero(today)
	if stored != nil {
		rec, _ = stored.Resolve(today)
	}

	return c.JSON(fiber.Map{
		"date":       rec.Date,
		"count":      rec.Total(),
		"totalCount": rec.Total(),
		"countA":     rec.CountA,
		"countB":     rec.CountB,
	})
}

// HandlePostCounter stores the posted record under its date.
func (cc *CounterController) HandlePostCounter(c *fiber.Ctx) error {
	var req counterRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid count value"})
	}
	if !req.hasCount() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid count value"})
	}
	if err := cc.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid count value"})
	}

	if err := cc.repo.Save(c.UserContext(), req.record()); err != nil {
		log.Errorf("[Counter] Error updating counter: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// HandleReset clears every stored date. The admin middleware runs first.
func (cc *CounterController) HandleReset(c *fiber.Ctx) error {
	deleted, err := cc.repo.Reset(c.UserContext())
	if err != nil {
		log.Errorf("[Counter] Error resetting counters: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}

	log.Infof("[Counter] Admin reset removed %d stored dates", deleted)
	return c.JSON(fiber.Map{"success": true, "deleted": deleted})
}

// HandleHealth reports the configured store.
func (cc *CounterController) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "store": cc.repo.Driver()})
}
