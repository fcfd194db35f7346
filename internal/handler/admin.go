package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves the /admin endpoints.  Routes are mounted behind
// JWTAuth and RequireRole("admin"); the service checks the role again.
type AdminHandler struct {
	Admin *service.AdminService
}

func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{Admin: admin}
}

// Users lists accounts, filtered by ?username=, ?email= and ?role=.
func (h *AdminHandler) Users(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.Admin.ListUsers(ctx, caller(c), model.UserFilter{
		Username: c.QueryParam("username"),
		Email:    c.QueryParam("email"),
		Role:     c.QueryParam("role"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) GetUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Admin.GetUserByID(ctx, caller(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Admin.DeleteUser(ctx, caller(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

func (h *AdminHandler) Reservations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Admin.ListAllReservations(ctx, caller(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ExportReservations streams the moderation view as an xlsx attachment.
// The workbook is buffered so a failure still produces a JSON error.
func (h *AdminHandler) ExportReservations(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	var buf bytes.Buffer
	if err := h.Admin.ExportReservations(ctx, caller(c), &buf); err != nil {
		return fail(c, err)
	}
	name := fmt.Sprintf("reservations-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
