package billing

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSimulatedGateway_Extremes(t *testing.T) {
	ctx := context.Background()
	charge := Charge{BundleID: uuid.New(), AmountCents: 999}

	always := NewSimulatedGateway(1, nil)
	never := NewSimulatedGateway(0, nil)
	for i := 0; i < 100; i++ {
		assert.NoError(t, always.Charge(ctx, charge))
		assert.True(t, IsDeclined(never.Charge(ctx, charge)))
	}
}

func TestSimulatedGateway_Rate(t *testing.T) {
	g := NewSimulatedGateway(DefaultSuccessRate, rand.New(rand.NewPCG(1, 2)))

	approved := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if g.Charge(context.Background(), Charge{}) == nil {
			approved++
		}
	}
	assert.InDelta(t, 0.9, float64(approved)/n, 0.03)
}

func TestSimulatedGateway_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSimulatedGateway(1, nil).Charge(ctx, Charge{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsDeclined(err))
}

func TestFixedGateway(t *testing.T) {
	g := NewFixedGateway(false)
	id := uuid.New()

	err := g.Charge(context.Background(), Charge{BundleID: id, AmountCents: 2999})
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	charges := g.Charges()
	assert.Len(t, charges, 1)
	assert.Equal(t, id, charges[0].BundleID)
}
