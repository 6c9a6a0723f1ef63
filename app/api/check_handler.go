package api

import (
	"github.com/gofiber/fiber/v2"
)

type CheckHandler struct {
	pipeline Pipeline
}

func NewCheckHandler(pipeline Pipeline) *CheckHandler {
	return &CheckHandler{pipeline: pipeline}
}

// HandleHealthy verifies that the vector store collection can be
// provisioned, which covers reachability of the store itself.
func (h *CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	if err := h.pipeline.EnsureCollection(c.Context()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"result": "ok"})
}
