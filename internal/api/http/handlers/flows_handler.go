package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/api/dto"
	"github.com/spec-kit/sales-crm/internal/service"
)

// FlowsHandler exposes AI flows.
type FlowsHandler struct {
	flows *service.FlowService
}

// NewFlowsHandler constructs handler.
func NewFlowsHandler(flows *service.FlowService) *FlowsHandler {
	return &FlowsHandler{flows: flows}
}

// List GET /flows.
func (h *FlowsHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.flows.Catalog()})
}

// Invoke POST /flows/:name. The body is the flow input document.
func (h *FlowsHandler) Invoke(c *fiber.Ctx) error {
	out, err := h.flows.Invoke(c.UserContext(), c.Params("name"), c.Body())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": out})
}

// ScoreAnchor POST /anchors/:id/score.
func (h *FlowsHandler) ScoreAnchor(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ScoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload(err)
		}
	}
	lang, err := requestLanguage(p, req.Language)
	if err != nil {
		return err
	}
	out, err := h.flows.ScoreAnchorLead(c.UserContext(), p.Actor.ID, c.Params("id"), lang)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": out})
}

// ScoreSpoke POST /spokes/:id/score.
func (h *FlowsHandler) ScoreSpoke(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ScoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload(err)
		}
	}
	lang, err := requestLanguage(p, req.Language)
	if err != nil {
		return err
	}
	out, err := h.flows.ScoreSpoke(c.UserContext(), p.Actor.ID, c.Params("id"), lang)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": out})
}

// ScoreSpokes POST /spokes/score.
func (h *FlowsHandler) ScoreSpokes(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.BatchScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}
	lang, err := requestLanguage(p, req.Language)
	if err != nil {
		return err
	}

	results, err := h.flows.ScoreSpokes(c.UserContext(), p.Actor.ID, req.SpokeIDs, lang)
	if err != nil {
		return err
	}

	resp := dto.BatchScoreResponse{Items: make([]dto.BatchScoreItem, 0, len(results))}
	for _, r := range results {
		item := dto.BatchScoreItem{SpokeID: r.SpokeID}
		if r.Error != nil {
			item.Error = &dto.ErrorBody{Code: r.Error.Code, Message: r.Error.Message, Details: r.Error.Details}
			resp.Failed++
		} else {
			item.Result = r.Result
			resp.Succeeded++
		}
		resp.Items = append(resp.Items, item)
	}
	return c.JSON(fiber.Map{"data": resp})
}
