package handlers

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mastery-scheduler/internal/filters"
	"mastery-scheduler/internal/graph"
	"mastery-scheduler/internal/metrics"
	"mastery-scheduler/internal/models"
	"mastery-scheduler/internal/scheduler"
	"mastery-scheduler/internal/storage"
)

type Handler struct {
	scheduler *scheduler.Scheduler
	graph     *graph.UnitGraph
	blacklist storage.Blacklist
	filters   *filters.Manager
	metrics   *metrics.Metrics
}

func NewHandler(
	sched *scheduler.Scheduler,
	unitGraph *graph.UnitGraph,
	blacklist storage.Blacklist,
	filterManager *filters.Manager,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		scheduler: sched,
		graph:     unitGraph,
		blacklist: blacklist,
		filters:   filterManager,
		metrics:   m,
	}
}

// BatchRequest is the request body for requesting an exercise batch.
type BatchRequest struct {
	// An inline unit filter.
	Filter *models.UnitFilter `json:"filter,omitempty"`

	// The id of a saved filter. Takes precedence over the inline filter.
	FilterID string `json:"filter_id,omitempty"`
}

// ScoreRequest is the request body for submitting a trial score.
type ScoreRequest struct {
	ExerciseID string              `json:"exercise_id"`
	Score      models.MasteryScore `json:"score"`
	Timestamp  int64               `json:"timestamp,omitempty"`
}

// BlacklistRequest is the request body for adding a blacklist entry.
type BlacklistRequest struct {
	UnitID string `json:"unit_id"`
}

// GetBatch returns a new batch of scheduled exercises.
// POST /batch
func (h *Handler) GetBatch(c *fiber.Ctx) error {
	var req BatchRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	filter := req.Filter
	if req.FilterID != "" {
		named, ok := h.filters.Get(req.FilterID)
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Unknown filter " + req.FilterID,
			})
		}
		filter = &named.Filter
	}

	batch, err := h.scheduler.GetExerciseBatch(filter)
	if err != nil {
		log.Printf("Error computing exercise batch: %v", err)
		h.metrics.BatchRequests.WithLabelValues("error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute exercise batch",
		})
	}
	h.metrics.BatchRequests.WithLabelValues("ok").Inc()
	h.metrics.BatchSize.Observe(float64(len(batch)))

	return c.JSON(fiber.Map{
		"batch_id":  uuid.New(),
		"exercises": batch,
	})
}

// ScoreExercise records the score of an exercise trial.
// POST /scores
func (h *Handler) ScoreExercise(c *fiber.Ctx) error {
	var req ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.ExerciseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "exercise_id is required",
		})
	}
	if !req.Score.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "score must be between 1 and 5",
		})
	}
	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}

	if err := h.scheduler.ScoreExercise(req.ExerciseID, req.Score, timestamp); err != nil {
		log.Printf("Error scoring exercise %s: %v", req.ExerciseID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to record score",
		})
	}
	h.metrics.ScoresRecorded.WithLabelValues(strconv.Itoa(int(req.Score))).Inc()

	return c.JSON(fiber.Map{
		"message": "Score recorded successfully",
	})
}

// GetUnitScore returns the current score of a unit.
// GET /units/:id/score
func (h *Handler) GetUnitScore(c *fiber.Ctx) error {
	unitID := c.Params("id")
	score, ok := h.scheduler.UnitScore(unitID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown unit " + unitID,
		})
	}

	response := fiber.Map{
		"unit_id": unitID,
		"score":   score,
	}
	if h.graph.UnitType(unitID) == models.UnitTypeExercise {
		response["num_trials"] = h.scheduler.NumTrials(unitID)
	}
	return c.JSON(response)
}

// AddToBlacklist puts a unit on the blacklist and invalidates its cached
// score so the next batch reflects the change.
// POST /blacklist
func (h *Handler) AddToBlacklist(c *fiber.Ctx) error {
	var req BlacklistRequest
	if err := c.BodyParser(&req); err != nil || req.UnitID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unit_id is required",
		})
	}

	if err := h.blacklist.Add(req.UnitID); err != nil {
		log.Printf("Error blacklisting unit %s: %v", req.UnitID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update blacklist",
		})
	}
	h.scheduler.InvalidateCachedScoresWithPrefix(req.UnitID)
	h.metrics.CacheInvalidations.Inc()

	return c.JSON(fiber.Map{
		"message": "Unit blacklisted",
	})
}

// RemoveFromBlacklist takes a unit off the blacklist and invalidates its
// cached score.
// DELETE /blacklist/:id
func (h *Handler) RemoveFromBlacklist(c *fiber.Ctx) error {
	unitID := c.Params("id")
	if err := h.blacklist.Remove(unitID); err != nil {
		log.Printf("Error removing unit %s from blacklist: %v", unitID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update blacklist",
		})
	}
	h.scheduler.InvalidateCachedScoresWithPrefix(unitID)
	h.metrics.CacheInvalidations.Inc()

	return c.JSON(fiber.Map{
		"message": "Unit removed from blacklist",
	})
}

// GetBlacklist lists the blacklist entries.
// GET /blacklist
func (h *Handler) GetBlacklist(c *fiber.Ctx) error {
	entries, err := h.blacklist.Entries()
	if err != nil {
		log.Printf("Error listing blacklist: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list blacklist",
		})
	}
	return c.JSON(fiber.Map{
		"entries": entries,
	})
}

// GetFilters lists the saved unit filters.
// GET /filters
func (h *Handler) GetFilters(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"filters": h.filters.List(),
	})
}

// GetGraphDot returns a DOT rendering of the dependent graph, for
// diagnostics.
// GET /graph.dot
func (h *Handler) GetGraphDot(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(h.graph.DotDump())
}

// RegisterRoutes attaches the handler's routes to the app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/batch", h.GetBatch)
	app.Post("/scores", h.ScoreExercise)
	app.Get("/units/:id/score", h.GetUnitScore)
	app.Post("/blacklist", h.AddToBlacklist)
	app.Delete("/blacklist/:id", h.RemoveFromBlacklist)
	app.Get("/blacklist", h.GetBlacklist)
	app.Get("/filters", h.GetFilters)
	app.Get("/graph.dot", h.GetGraphDot)
}
