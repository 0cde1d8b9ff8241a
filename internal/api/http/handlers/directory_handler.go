package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-crm/internal/api/dto"
	"github.com/spec-kit/sales-crm/internal/service"
)

// DirectoryHandler exposes the reporting hierarchy as seen by the caller.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Visible handles GET /directory/visible.
func (h *DirectoryHandler) Visible(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.directory.VisibleUsers(p.Actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserSummaries(users)})
}

// Team handles GET /directory/team.
func (h *DirectoryHandler) Team(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	users, err := h.directory.Team(p.Actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserSummaries(users)})
}
