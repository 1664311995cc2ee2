package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "blogpanel/internal/errors"
	"blogpanel/internal/payment"
)

var minorUnits = decimal.NewFromInt(100)

// PaymentInitializer is the part of the provider client the service needs.
type PaymentInitializer interface {
	Initialize(ctx context.Context, email string, amountMinor int64) (*payment.Initialization, error)
}

// PaymentService starts hosted checkout payments.
type PaymentService interface {
	// Start validates amount (major units, decimal string) and returns the
	// URL the payer should be redirected to.
	Start(ctx context.Context, email, amount string) (string, error)
}

type paymentService struct {
	provider PaymentInitializer
}

// NewPaymentService creates a new payment service.
func NewPaymentService(provider PaymentInitializer) PaymentService {
	return &paymentService{provider: provider}
}

func (s *paymentService) Start(ctx context.Context, email, amount string) (string, error) {
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return "", err
	}

	started, err := s.provider.Initialize(ctx, email, minor)
	if err != nil {
		return "", fmt.Errorf("initialize payment: %w", err)
	}
	return started.AuthorizationURL, nil
}

// ToMinorUnits converts "25.50" to 2550. Amounts must be positive with at
// most two decimal places.
func ToMinorUnits(amount string) (int64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil || !d.IsPositive() {
		return 0, apperrors.ErrInvalidAmount
	}
	minor := d.Mul(minorUnits)
	if !minor.Equal(minor.Truncate(0)) {
		return 0, apperrors.ErrInvalidAmount
	}
	return minor.IntPart(), nil
}
