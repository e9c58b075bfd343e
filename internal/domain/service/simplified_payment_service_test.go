package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedPaymentGateway_Charge(t *testing.T) {
	gw := NewSimulatedPaymentGateway(0)

	res, err := gw.Charge(context.Background(), PaymentRequest{OrderID: "o1", AmountCents: 1299})
	require.NoError(t, err)
	assert.Equal(t, "paid", res.Status)
	assert.Contains(t, res.Reference, "sim-o1-")
}

func TestSimulatedPaymentGateway_RejectsNonPositiveAmount(t *testing.T) {
	gw := NewSimulatedPaymentGateway(0)

	_, err := gw.Charge(context.Background(), PaymentRequest{OrderID: "o1"})
	assert.Error(t, err)
}

func TestSimulatedPaymentGateway_HonoursCancellation(t *testing.T) {
	gw := NewSimulatedPaymentGateway(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Charge(ctx, PaymentRequest{OrderID: "o1", AmountCents: 100})
	assert.ErrorIs(t, err, context.Canceled)
}
