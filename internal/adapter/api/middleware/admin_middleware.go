package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"partmatch/internal/domain/repository"
)

type AdminMiddleware struct {
	profileRepo repository.ProfileRepository
}

func NewAdminMiddleware(profileRepo repository.ProfileRepository) *AdminMiddleware {
	return &AdminMiddleware{
		profileRepo: profileRepo,
	}
}

func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok || uid == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		profile, err := m.profileRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify admin privileges")
		}

		if !profile.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
		}

		return next(c)
	}
}
