package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/service"
)

// PaymentHandler starts hosted checkout payments.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// PaymentRequest is the donation form. Amount is in major currency units.
type PaymentRequest struct {
	Email  string `form:"email" validate:"required,email"`
	Amount string `form:"amount" validate:"required"`
}

// Initialize redirects the payer to the provider's checkout page.
func (h *PaymentHandler) Initialize(c echo.Context) error {
	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apperrors.Validation("A valid email and an amount are required")
	}

	url, err := h.paymentService.Start(c.Request().Context(), req.Email, req.Amount)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, url)
}
