package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/api/dto"
	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/service"
)

// CRMHandler serves visibility-scoped CRM records.
type CRMHandler struct {
	crm *service.CRMService
	now func() time.Time
}

// NewCRMHandler constructs handler.
func NewCRMHandler(crm *service.CRMService) *CRMHandler {
	return &CRMHandler{crm: crm, now: time.Now}
}

// ListAnchors GET /anchors.
func (h *CRMHandler) ListAnchors(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	anchors, err := h.crm.ListAnchors(c.UserContext(), p.Actor.ID)
	if err != nil {
		return err
	}
	items := make([]dto.AnchorResponse, 0, len(anchors))
	for _, a := range anchors {
		items = append(items, dto.NewAnchorResponse(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAnchor GET /anchors/:id.
func (h *CRMHandler) GetAnchor(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	anchor, err := h.crm.GetAnchor(c.UserContext(), p.Actor.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAnchorResponse(*anchor)})
}

// ListSpokes GET /spokes.
func (h *CRMHandler) ListSpokes(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	spokes, err := h.crm.ListSpokes(c.UserContext(), p.Actor.ID)
	if err != nil {
		return err
	}
	stage := domain.SpokeStage(c.Query("stage"))
	items := make([]dto.SpokeResponse, 0, len(spokes))
	for _, s := range spokes {
		if stage != "" && s.Stage != stage {
			continue
		}
		items = append(items, dto.NewSpokeResponse(s))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSpoke GET /spokes/:id.
func (h *CRMHandler) GetSpoke(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	spoke, err := h.crm.GetSpoke(c.UserContext(), p.Actor.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewSpokeResponse(*spoke)})
}

// ListTasks GET /tasks. ?status=OPEN|DONE filters.
func (h *CRMHandler) ListTasks(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	tasks, err := h.crm.ListTasks(c.UserContext(), p.Actor.ID)
	if err != nil {
		return err
	}
	status := domain.TaskStatus(c.Query("status"))
	now := h.now()
	items := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && t.Status != status {
			continue
		}
		items = append(items, dto.NewTaskResponse(t, now))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CompleteTask POST /tasks/:id/complete.
func (h *CRMHandler) CompleteTask(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	task, err := h.crm.CompleteTask(c.UserContext(), p.Actor.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTaskResponse(*task, h.now())})
}

// ListActivities GET /activities?limit=N.
func (h *CRMHandler) ListActivities(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	acts, err := h.crm.ListActivities(c.UserContext(), p.Actor.ID, c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(acts))
	for _, a := range acts {
		items = append(items, dto.NewActivityResponse(a))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateActivity POST /activities.
func (h *CRMHandler) CreateActivity(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload(err)
	}
	act, err := h.crm.LogActivity(c.UserContext(), p.Actor.ID, service.ActivityInput{
		EntityType: domain.EntityType(req.EntityType),
		EntityID:   req.EntityID,
		Type:       domain.ActivityType(req.Type),
		Summary:    req.Summary,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewActivityResponse(*act)})
}

// Dashboard GET /dashboard.
func (h *CRMHandler) Dashboard(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	summary, err := h.crm.Dashboard(c.UserContext(), p.Actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
