package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nirmaanhq/chatbot-system/internal/core/domain"
	"github.com/nirmaanhq/chatbot-system/internal/core/service"
)

// AdminHandler exposes the operator-facing user management endpoints.
type AdminHandler struct {
	users *service.UserService
	log   zerolog.Logger
}

func NewAdminHandler(users *service.UserService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: log}
}

type changeRoleRequest struct {
	Phone string `json:"phone" validate:"required,min=10"`
	Role  string `json:"role"  validate:"required,oneof=employee customer admin"`
}

type userResponse struct {
	ID         string     `json:"id"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// ChangeRole promotes or demotes a user.
// POST /v1/admin/users/role
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	phone := domain.NormalizePhone(req.Phone)
	user, err := h.users.ChangeRole(c.Request().Context(), phone, domain.Role(req.Role))
	if err != nil {
		return err
	}

	h.log.Info().Str("phone", phone).Str("role", req.Role).Msg("role changed")

	return c.JSON(http.StatusOK, userResponse{
		ID:         user.ID,
		Phone:      user.Phone,
		Role:       string(user.Role),
		Verified:   user.Verified,
		VerifiedAt: user.VerifiedAt,
	})
}
