package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/api/dto"
	"github.com/spec-kit/article-platform/internal/service"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// TagsHandler exposes tag management endpoints.
type TagsHandler struct {
	tags *service.TagService
}

// NewTagsHandler constructs handler.
func NewTagsHandler(tagService *service.TagService) *TagsHandler {
	return &TagsHandler{tags: tagService}
}

// Create handles POST /tag/create. Admin only.
func (h *TagsHandler) Create(c *fiber.Ctx) error {
	var req dto.TagCreateRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	tag, err := h.tags.Create(c.Context(), req.Name, req.ParentID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTagResponse(tag))
}

// Delete handles DELETE /tag/:tag_id/delete. Admin only.
func (h *TagsHandler) Delete(c *fiber.Ctx) error {
	tagID, err := strconv.ParseInt(c.Params("tag_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid tag id", nil)
	}

	if err := h.tags.Delete(c.Context(), tagID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
