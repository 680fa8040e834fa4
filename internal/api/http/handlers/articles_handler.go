package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/api/dto"
	"github.com/spec-kit/article-platform/internal/auth"
	"github.com/spec-kit/article-platform/internal/service"
	apperrors "github.com/spec-kit/article-platform/pkg/util"
)

// ArticlesHandler exposes article CRUD endpoints.
type ArticlesHandler struct {
	articles *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{articles: articleService}
}

// Create handles POST /article/create. Admin only.
func (h *ArticlesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("could not validate credentials")
	}

	var req dto.ArticleCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.ImageURL == "" || req.Content == "" {
		return apperrors.NewValidationError("title, article_img_url, content required", nil)
	}

	article, err := h.articles.Create(c.Context(), principal.SubjectID, service.ArticleInput{
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Content:     req.Content,
		TagIDs:      req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewArticleResponse(article))
}

// Get handles GET /article/:article_id. Public.
func (h *ArticlesHandler) Get(c *fiber.Ctx) error {
	article, err := h.articles.Get(c.Context(), c.Params("article_id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewArticleResponse(article))
}

// Update handles PUT /article/:article_id/update. Admin only.
func (h *ArticlesHandler) Update(c *fiber.Ctx) error {
	var req dto.ArticleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	article, err := h.articles.Update(c.Context(), c.Params("article_id"),
		req.Title, req.ImageURL, req.Description, req.Content, req.Tags)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewArticleResponse(article))
}

// Delete handles DELETE /article/:article_id/delete. Admin only.
func (h *ArticlesHandler) Delete(c *fiber.Ctx) error {
	if err := h.articles.Delete(c.Context(), c.Params("article_id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListByTag handles GET /tag/:name. Public.
func (h *ArticlesHandler) ListByTag(c *fiber.Ctx) error {
	articles, err := h.articles.ListByTag(c.Context(), c.Params("name"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewArticleListResponse(articles))
}
