package rider

import (
	"net/http"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"
	"food-delivery/internal/respond"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Handler exposes rider applications and the admin rider console.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// RegisterRoutes mounts the rider routes on an authenticated group.
//
//	POST   /riders             customer applies
//	GET    /riders/pending     admin: applications awaiting approval
//	GET    /riders/available   admin: dispatchable riders, ?thana=
//	PATCH  /riders/:id/status  admin: approve
//	DELETE /riders/:id         admin
//	POST   /riders/reconcile   admin: rebuild work status from orders
//	GET    /riders/earnings    rider: own earnings and cashout summary
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/riders", h.Apply, auth.Require(models.RoleCustomer))
	g.GET("/riders/pending", h.ListPending, auth.Require(models.RoleAdmin))
	g.GET("/riders/available", h.ListAvailable, auth.Require(models.RoleAdmin))
	g.PATCH("/riders/:id/status", h.Approve, auth.Require(models.RoleAdmin))
	g.DELETE("/riders/:id", h.Delete, auth.Require(models.RoleAdmin))
	g.POST("/riders/reconcile", h.Reconcile, auth.Require(models.RoleAdmin))
	g.GET("/riders/earnings", h.Earnings, auth.Require(models.RoleRider))
}

func (h *Handler) Apply(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.RiderApplication
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	rider, err := h.svc.Apply(c.Request().Context(), caller, req)
	if err != nil {
		return respond.Error(c, "Handler.Apply", err)
	}
	return c.JSON(http.StatusCreated, rider)
}

func (h *Handler) ListPending(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	riders, err := h.svc.ListPending(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, "Handler.ListPending", err)
	}
	return c.JSON(http.StatusOK, riders)
}

func (h *Handler) ListAvailable(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	riders, err := h.svc.ListAvailable(c.Request().Context(), caller, c.QueryParam("thana"))
	if err != nil {
		return respond.Error(c, "Handler.ListAvailable", err)
	}
	return c.JSON(http.StatusOK, riders)
}

func (h *Handler) Approve(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.RiderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	rider, err := h.svc.Approve(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Error(c, "Handler.Approve", err)
	}
	return c.JSON(http.StatusOK, rider)
}

func (h *Handler) Delete(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	if err := h.svc.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return respond.Error(c, "Handler.Delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Reconcile(c echo.Context) error {
	res, err := h.svc.Reconcile(c.Request().Context())
	if err != nil {
		return respond.Error(c, "Handler.Reconcile", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Earnings(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	earnings, err := h.svc.Earnings(c.Request().Context(), caller)
	if err != nil {
		return respond.Error(c, "Handler.Earnings", err)
	}
	return c.JSON(http.StatusOK, earnings)
}
