package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/article-platform/internal/api/http/handlers"
	"github.com/spec-kit/article-platform/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Articles       *handlers.ArticlesHandler
	Tags           *handlers.TagsHandler
	Comments       *handlers.CommentsHandler
	Votes          *handlers.VotesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	user := api.Group("/user")
	user.Post("/register", cfg.Users.Register)
	user.Post("/login", cfg.Users.Login)
	user.Get("/refresh", cfg.Users.Refresh)
	user.Post("/logout", cfg.Users.Logout)

	userProtected := user.Group("", cfg.AuthMiddleware.Handle)
	userProtected.Get("/current_user", cfg.Users.CurrentUser)
	userProtected.Patch("/email/update", cfg.Users.UpdateEmail)
	userProtected.Patch("/password/update", cfg.Users.UpdatePassword)
	userProtected.Put("/update", cfg.Users.UpdateProfile)
	userProtected.Delete("/delete", cfg.Users.DeleteSelf)
	userProtected.Get("/users", auth.RequireAdmin(), cfg.Users.List)
	userProtected.Delete("/:user_id/delete", auth.RequireAdmin(), cfg.Users.AdminDelete)

	tag := api.Group("/tag")
	tag.Get("/:name", cfg.Articles.ListByTag)
	tag.Post("/create", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tags.Create)
	tag.Delete("/:tag_id/delete", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tags.Delete)

	article := api.Group("/article")
	article.Get("/:article_id", cfg.Articles.Get)
	article.Post("/create", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Articles.Create)
	article.Put("/:article_id/update", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Articles.Update)
	article.Delete("/:article_id/delete", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Articles.Delete)

	comment := api.Group("/comment", cfg.AuthMiddleware.Handle)
	comment.Post("/:article_id/create", cfg.Comments.Create)
	comment.Patch("/:comment_id/update", cfg.Comments.Update)
	comment.Delete("/:comment_id/delete", cfg.Comments.Delete)

	api.Get("/vote/:article_id", cfg.AuthMiddleware.Handle, cfg.Votes.Toggle)
}
