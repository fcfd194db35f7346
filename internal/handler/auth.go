package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-lending/internal/middleware"
	"github.com/iliyamo/book-lending/internal/service"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserReq struct {
	UserID   uint64 `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type existsReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Register creates an account and signs the caller in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, sess)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	sess, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Logout revokes the bearer token.  It is not behind JWTAuth, so a bad
// token is reported as a client error rather than 401.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, middleware.BearerToken(c)); err != nil {
		if kind, _ := service.KindOf(err); kind == service.KindInvalidToken {
			return failWith(c, http.StatusBadRequest, service.MsgInvalidToken, err)
		}
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out"})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	p, err := h.Auth.GetProfile(ctx, caller(c).UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.UpdateProfile(ctx, caller(c).UserID, service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": u})
}

// UpdateUser lets an admin change another account; the target is named in
// the body.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return badRequest(c, "userId is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Auth.UpdateUser(ctx, caller(c), req.UserID, service.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User updated successfully", "user": u})
}

func (h *AuthHandler) CheckEmailExists(c echo.Context) error {
	var req existsReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return badRequest(c, "Email is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	exists, err := h.Auth.EmailExists(ctx, req.Email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}

func (h *AuthHandler) CheckUsernameExists(c echo.Context) error {
	var req existsReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		return badRequest(c, "Username is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	exists, err := h.Auth.UsernameExists(ctx, req.Username)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"exists": exists})
}
