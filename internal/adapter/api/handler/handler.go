package handler

import (
	"github.com/labstack/echo/v4"

	"partmatch/pkg/errors"
)

// currentUserID returns the uid set by the auth middleware.
func currentUserID(c echo.Context) (string, error) {
	uid, ok := c.Get("uid").(string)
	if !ok || uid == "" {
		return "", errors.Unauthorized("Authentication required", nil)
	}
	return uid, nil
}
