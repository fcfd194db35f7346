package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/handler"
	"github.com/iliyamo/book-lending/internal/middleware"
)

// RegisterBooks registers the catalog under /book.  Only the public listing
// is cached; static paths win over /book/:id in echo's router.
func RegisterBooks(e *echo.Echo, h *handler.BookHandler, auth middleware.Authenticator, cache echo.MiddlewareFunc) {
	g := e.Group("/book")
	g.GET("/all", h.List, cache)
	g.GET("/:id", h.Get, middleware.OptionalAuth(auth))

	jwt := middleware.JWTAuth(auth)
	g.GET("/reservations", h.MyReservations, jwt)
	g.GET("/my-books", h.MyBooks, jwt)
	g.POST("/new", h.Create, jwt)
	g.PUT("/upload/:id", h.Update, jwt)
	g.DELETE("/delete/:id", h.Delete, jwt)
}

// RegisterReservations registers the /reservation group; every route needs
// a valid token.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, auth middleware.Authenticator) {
	g := e.Group("/reservation", middleware.JWTAuth(auth))
	g.POST("/reserve/:bookId", h.Reserve)
	g.GET("/get-reservation/:bookId", h.GetByBook)
}
