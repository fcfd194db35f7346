package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/handler"
	"github.com/iliyamo/book-lending/internal/middleware"
	"github.com/iliyamo/book-lending/internal/model"
)

// RegisterAdmin registers moderation endpoints under /admin.  All routes
// require a JWT and the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, auth middleware.Authenticator) {
	g := e.Group(
		"/admin",
		middleware.JWTAuth(auth),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/users", h.Users)
	g.GET("/get-user/:id", h.GetUser)
	g.DELETE("/delete-user/:id", h.DeleteUser)
	g.GET("/reservations", h.Reservations)
	g.GET("/reservations/export", h.ExportReservations)
}
