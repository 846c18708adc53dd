package food

import (
	"net/http"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"
	"food-delivery/internal/respond"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// RegisterRoutes mounts the admin catalog routes on the authenticated group
// and the public lookup on e.
func (h *Handler) RegisterRoutes(e *echo.Echo, g *echo.Group) {
	e.GET("/foods/:id", h.Get)
	g.POST("/foods", h.Create, auth.Require(models.RoleAdmin))
	g.PATCH("/foods/:id", h.Update, auth.Require(models.RoleAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	var req models.CreateFoodRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	f, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, "Handler.Create", err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) Get(c echo.Context) error {
	f, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respond.Error(c, "Handler.Get", err)
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) Update(c echo.Context) error {
	var req models.UpdateFoodRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	f, err := h.svc.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return respond.Error(c, "Handler.Update", err)
	}
	return c.JSON(http.StatusOK, f)
}
