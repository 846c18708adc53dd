package order

import (
	"net/http"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"
	"food-delivery/internal/respond"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new order handler.
func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts the order routes on an authenticated group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders", h.PlaceOrder, auth.Require())
	g.GET("/orders/:id", h.GetOrder, auth.Require())
	g.PATCH("/orders/:id", h.CancelOrder, auth.Require())
	g.PATCH("/orders/:id/assign", h.AssignRider, auth.Require(models.RoleAdmin))
	g.PATCH("/orders/:id/status", h.UpdateStatus, auth.Require(models.RoleRider))
	g.PATCH("/orders/:id/cashout", h.Cashout, auth.Require(models.RoleRider))
}

func (h *Handler) PlaceOrder(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	o, err := h.svc.PlaceOrder(c.Request().Context(), caller, req)
	if err != nil {
		return respond.Error(c, "Handler.PlaceOrder", err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) GetOrder(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	o, err := h.svc.GetOrder(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Error(c, "Handler.GetOrder", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) CancelOrder(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.CancelOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	o, err := h.svc.CancelOrder(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Error(c, "Handler.CancelOrder", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) AssignRider(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.AssignRiderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	o, err := h.svc.AssignRider(c.Request().Context(), caller, c.Param("id"), req)
	if err != nil {
		return respond.Error(c, "Handler.AssignRider", err)
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateStatus lets the assigned rider report picked or delivered.
func (h *Handler) UpdateStatus(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	ctx := c.Request().Context()
	var (
		o   *models.Order
		err error
	)
	if req.Status == models.OrderPicked {
		o, err = h.svc.MarkPicked(ctx, caller, c.Param("id"))
	} else {
		o, err = h.svc.MarkDelivered(ctx, caller, c.Param("id"))
	}
	if err != nil {
		return respond.Error(c, "Handler.UpdateStatus", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) Cashout(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	o, err := h.svc.Cashout(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Error(c, "Handler.Cashout", err)
	}
	return c.JSON(http.StatusOK, o)
}
