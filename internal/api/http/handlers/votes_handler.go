package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/service"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// VotesHandler exposes the vote toggle endpoint.
type VotesHandler struct {
	votes *service.VoteService
}

// NewVotesHandler constructs handler.
func NewVotesHandler(voteService *service.VoteService) *VotesHandler {
	return &VotesHandler{votes: voteService}
}

// Toggle handles GET /vote/:article_id.
func (h *VotesHandler) Toggle(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	liked, err := h.votes.Toggle(c.Context(), principal.SubjectID, c.Params("article_id"))
	if err != nil {
		return err
	}

	message := "article unliked successfully"
	if liked {
		message = "article liked successfully"
	}
	return c.JSON(fiber.Map{"message": message})
}
