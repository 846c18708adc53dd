package notification

import (
	"net/http"
	"strconv"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"

	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for notifications.
type Handler struct {
	svc ServiceInterface
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the routes on a group that already verified the token.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.List, auth.Require())
	g.PATCH("/notifications/readAll", h.ReadAll, auth.Require())
}

func (h *Handler) List(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	page := 1
	limit := 20
	if pageStr := c.QueryParam("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	result, err := h.svc.List(c.Request().Context(), caller.Email, page, limit)
	if err != nil {
		c.Logger().Error("Handler.List: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to retrieve notifications"})
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ReadAll(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	result, err := h.svc.ReadAll(c.Request().Context(), caller.Email)
	if err != nil {
		c.Logger().Error("Handler.ReadAll: ", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to mark notifications read"})
	}
	return c.JSON(http.StatusOK, result)
}
