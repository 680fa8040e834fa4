package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/api/dto"
	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/service"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// CommentsHandler exposes comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// Create handles POST /comment/:article_id/create.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil || req.Comment == "" {
		return apperrors.NewValidationError("comment required", nil)
	}

	comment, err := h.comments.Create(c.Context(), principal.SubjectID, c.Params("article_id"), req.Comment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

// Update handles PATCH /comment/:comment_id/update.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	commentID, err := strconv.ParseInt(c.Params("comment_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid comment id", nil)
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil || req.Comment == "" {
		return apperrors.NewValidationError("comment required", nil)
	}

	comment, err := h.comments.Update(c.Context(), principal.SubjectID, commentID, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCommentResponse(comment))
}

// Delete handles DELETE /comment/:comment_id/delete.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	commentID, err := strconv.ParseInt(c.Params("comment_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid comment id", nil)
	}

	if err := h.comments.Delete(c.Context(), principal.SubjectID, commentID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
