package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/handler"
	"github.com/iliyamo/book-lending/internal/middleware"
	"github.com/iliyamo/book-lending/internal/model"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the /auth group.  Credential endpoints sit behind
// limiter; logout reads the bearer header itself so it can answer 400 for a
// bad token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth middleware.Authenticator, limiter echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/check-email-exists", a.CheckEmailExists, limiter)
	g.POST("/check-username-exists", a.CheckUsernameExists, limiter)
	g.POST("/logout", a.Logout)

	jwt := middleware.JWTAuth(auth)
	g.GET("/profile", a.Profile, jwt)
	g.PUT("/update-profile", a.UpdateProfile, jwt)
	g.PUT("/update-user", a.UpdateUser, jwt, middleware.RequireRole(model.RoleAdmin))
}
