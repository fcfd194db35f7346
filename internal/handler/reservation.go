package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/service"
)

// ReservationHandler serves the /reservation endpoints.
type ReservationHandler struct {
	Bookings *service.ReservationService
}

func NewReservationHandler(bookings *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Bookings: bookings}
}

// Reserve claims an available book for the caller.  The body carries the
// delivery contact: firstName, lastName, address, phoneNumber.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return badRequest(c, "Invalid book id")
	}
	var info model.RequesterInfo
	if err := c.Bind(&info); err != nil {
		return badRequest(c, service.MsgAllFieldsRequired)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Bookings.ReserveBook(ctx, bookID, info, caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Book reserved successfully", "reservation": res})
}

func (h *ReservationHandler) GetByBook(c echo.Context) error {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return badRequest(c, "Invalid book id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	d, err := h.Bookings.GetReservationByBookID(ctx, bookID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
