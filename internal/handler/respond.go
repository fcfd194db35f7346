package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/middleware"
	"github.com/iliyamo/book-lending/internal/model"
	"github.com/iliyamo/book-lending/internal/service"
)

// dbTimeout bounds the store work of a single request.
const dbTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// statusOf maps a domain error kind to its HTTP status.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindUnavailable:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnauthorized, service.KindInvalidToken:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail writes err as {"message": ...}.  Unclassified errors become a
// generic 500; the raw error is echoed under "error" in debug mode.
func fail(c echo.Context, err error) error {
	var e *service.Error
	if !errors.As(err, &e) {
		return failWith(c, http.StatusInternalServerError, "Internal server error", err)
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	return failWith(c, statusOf(e.Kind), msg, err)
}

func failWith(c echo.Context, status int, msg string, err error) error {
	body := echo.Map{"message": msg}
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	if err != nil && c.Echo().Debug {
		body["error"] = err.Error()
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg})
}

// caller returns the identity stored by the auth middleware.
func caller(c echo.Context) model.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
