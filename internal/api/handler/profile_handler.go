package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

type ProfileHandler struct {
	profiles ports.ProfileRepository
}

func NewProfileHandler(profiles ports.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

type updateProfileRequest struct {
	FullName            *string `json:"full_name,omitempty"            validate:"omitempty,max=100"`
	Username            *string `json:"username,omitempty"             validate:"omitempty,min=3,max=30"`
	AvatarURL           *string `json:"avatar_url,omitempty"           validate:"omitempty,url"`
	OnboardingCompleted *bool   `json:"onboarding_completed,omitempty"`
}

// Get returns the caller's profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  domain.Profile
// @Failure      404  {object}  map[string]string
// @Router       /profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	profile, err := h.profiles.FindByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Update applies a partial profile update and returns the re-fetched row.
// The response always reflects confirmed store state, never the request
// merged locally.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  domain.Profile
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /profile [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username != nil {
		if err := domain.ValidateUsername(*req.Username); err != nil {
			return err
		}
	}

	patch := domain.ProfilePatch{
		FullName:            req.FullName,
		Username:            req.Username,
		AvatarURL:           req.AvatarURL,
		OnboardingCompleted: req.OnboardingCompleted,
	}
	if !patch.IsZero() {
		if err := h.profiles.UpdatePartial(c.Request().Context(), userID, patch); err != nil {
			return err
		}
	}

	profile, err := h.profiles.FindByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
