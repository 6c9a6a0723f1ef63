package api

import (
	"context"

	"rag/types"

	"github.com/gofiber/fiber/v2"
)

// Pipeline is the part of the query/ingestion service the handlers use.
type Pipeline interface {
	EnsureCollection(ctx context.Context) error
	Ingest(ctx context.Context, params types.IngestParams) (types.IngestResult, error)
	Query(ctx context.Context, params types.QueryParams) (types.ChatAnswer, error)
}

type RequestHandler struct {
	pipeline Pipeline
}

func NewRequestHandler(pipeline Pipeline) *RequestHandler {
	return &RequestHandler{pipeline: pipeline}
}

func (h *RequestHandler) HandleIngest(c *fiber.Ctx) error {
	var params types.IngestParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	result, err := h.pipeline.Ingest(c.Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *RequestHandler) HandleQuery(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	answer, err := h.pipeline.Query(c.Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(answer)
}
