// Package respond writes service errors as JSON responses.
package respond

import (
	"net/http"

	"food-delivery/internal/models"

	"github.com/labstack/echo/v4"
)

// Error answers with the status mapped from err. Unmapped errors are logged
// under op and hidden behind a generic message.
func Error(c echo.Context, op string, err error) error {
	status, msg := models.HTTPStatus(err)
	if status == http.StatusInternalServerError && msg == "" {
		c.Logger().Error(op+": ", err)
		return c.JSON(status, models.ErrorResponse{Message: "Something went wrong, please try again"})
	}
	return c.JSON(status, models.ErrorResponse{Message: msg})
}

