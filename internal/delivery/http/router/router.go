// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"cliptube/internal/delivery/http/middleware"
	"cliptube/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/healthz", handler.HealthCheck)

	users := e.Group("/api/v1/users")
	{
		users.POST("/register", r.userHandler.Register)
		users.POST("/login", r.userHandler.Login)
		users.POST("/refresh-token", r.userHandler.RefreshToken)
	}

	// Routes that require a valid access token
	secured := users.Group("")
	secured.Use(r.authMiddleware.Authenticate)
	{
		secured.POST("/logout", r.userHandler.Logout)
		secured.GET("/current-user", r.userHandler.CurrentUser)
	}
}
