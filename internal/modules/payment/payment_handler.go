package payment

import (
	"net/http"

	"food-delivery/internal/auth"
	"food-delivery/internal/models"
	"food-delivery/internal/respond"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc         ServiceInterface
	validate    *validator.Validate
	trackingURL string
}

// NewHandler creates the payment handler. trackingURL is where the payer's
// browser lands after any gateway callback.
func NewHandler(svc ServiceInterface, trackingURL string) *Handler {
	return &Handler{svc: svc, validate: validator.New(), trackingURL: trackingURL}
}

// RegisterRoutes mounts the payment routes that need a caller.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/payments/create-ssl-payment", h.CreateGatewaySession, auth.Require())
	g.POST("/payments/create-payment-intent", h.CreatePaymentIntent, auth.Require())
	g.POST("/payments", h.RecordDirectPayment, auth.Require())
}

// RegisterCallbacks mounts the gateway callbacks. They carry no token.
func (h *Handler) RegisterCallbacks(e *echo.Echo) {
	e.POST("/payments/success-payment", h.GatewaySuccess)
	e.POST("/payments/fail-payment", h.GatewayFailure)
	e.POST("/payments/cancel-payment", h.GatewayCancel)
}

func (h *Handler) CreateGatewaySession(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.GatewaySessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	res, err := h.svc.InitiateGatewaySession(c.Request().Context(), caller, req)
	if err != nil {
		return respond.Error(c, "Handler.CreateGatewaySession", err)
	}
	return c.JSON(http.StatusCreated, res)
}

// gatewayCallback is the form body the gateway posts to every callback.
type gatewayCallback struct {
	TransactionID string `form:"tran_id"`
	ValidationID  string `form:"val_id"`
}

// GatewaySuccess always redirects; the outcome is visible on the order.
func (h *Handler) GatewaySuccess(c echo.Context) error {
	var cb gatewayCallback
	if err := c.Bind(&cb); err != nil {
		return c.Redirect(http.StatusFound, h.trackingURL)
	}
	if err := h.svc.OnGatewaySuccess(c.Request().Context(), cb.TransactionID, cb.ValidationID); err != nil {
		c.Logger().Warn("Handler.GatewaySuccess: ", err)
	}
	return c.Redirect(http.StatusFound, h.trackingURL)
}

func (h *Handler) GatewayFailure(c echo.Context) error {
	var cb gatewayCallback
	if err := c.Bind(&cb); err == nil {
		if err := h.svc.OnGatewayFailure(c.Request().Context(), cb.TransactionID); err != nil {
			c.Logger().Warn("Handler.GatewayFailure: ", err)
		}
	}
	return c.Redirect(http.StatusFound, h.trackingURL)
}

func (h *Handler) GatewayCancel(c echo.Context) error {
	var cb gatewayCallback
	if err := c.Bind(&cb); err == nil {
		if err := h.svc.OnGatewayCancel(c.Request().Context(), cb.TransactionID); err != nil {
			c.Logger().Warn("Handler.GatewayCancel: ", err)
		}
	}
	return c.Redirect(http.StatusFound, h.trackingURL)
}

func (h *Handler) CreatePaymentIntent(c echo.Context) error {
	var req models.PaymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	res, err := h.svc.CreateDirectPaymentIntent(c.Request().Context(), req)
	if err != nil {
		return respond.Error(c, "Handler.CreatePaymentIntent", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) RecordDirectPayment(c echo.Context) error {
	caller, _ := auth.CallerFrom(c)

	var req models.DirectPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed: " + err.Error()})
	}

	p, err := h.svc.RecordDirectPayment(c.Request().Context(), caller, req)
	if err != nil {
		return respond.Error(c, "Handler.RecordDirectPayment", err)
	}
	return c.JSON(http.StatusCreated, p)
}
