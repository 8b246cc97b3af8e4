package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

// AdminHandler serves the admin-only views. All routes are mounted behind
// the role-checking guard; handlers assume an admin caller.
type AdminHandler struct {
	profiles ports.ProfileRepository
}

func NewAdminHandler(profiles ports.ProfileRepository) *AdminHandler {
	return &AdminHandler{profiles: profiles}
}

// ListUsers returns every profile, including suspended accounts.
//
// @Summary      List user profiles
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Profile
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	profiles, err := h.profiles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}
