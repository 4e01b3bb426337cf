package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func currentUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}
	return userID, nil
}
