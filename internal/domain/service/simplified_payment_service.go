package service

import (
	"context"
	"fmt"
	"time"

	"partmatch/pkg/logger"
)

// PaymentRequest represents a charge for a listing promotion.
type PaymentRequest struct {
	OrderID     string
	UserID      string
	AmountCents int64
	Description string
}

// PaymentResult represents the outcome reported by the gateway.
type PaymentResult struct {
	Reference string
	Status    string // "paid", "failed"
	PaidAt    time.Time
}

type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

// SimulatedPaymentGateway approves every charge after a fixed delay. No money
// moves; it stands in until a real provider is integrated.
type SimulatedPaymentGateway struct {
	delay time.Duration
	now   func() time.Time
}

func NewSimulatedPaymentGateway(delay time.Duration) *SimulatedPaymentGateway {
	return &SimulatedPaymentGateway{
		delay: delay,
		now:   time.Now,
	}
}

func (g *SimulatedPaymentGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("invalid amount %d", req.AmountCents)
	}

	logger.Info("Simulating payment for order %s: %d cents", req.OrderID, req.AmountCents)

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return &PaymentResult{
		Reference: fmt.Sprintf("sim-%s-%d", req.OrderID, g.now().Unix()),
		Status:    "paid",
		PaidAt:    g.now(),
	}, nil
}
