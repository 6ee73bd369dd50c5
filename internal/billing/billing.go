// Package billing provides the payment capability used by subscription renewals.
//
// No real gateway is integrated: SimulatedGateway approves a configurable share
// of charges and FixedGateway always answers the same way.
package billing

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// ErrPaymentDeclined is returned when a charge is refused.
var ErrPaymentDeclined = errors.New("payment declined")

// Charge describes one renewal payment.
type Charge struct {
	BundleID    uuid.UUID
	UserID      uuid.UUID
	AmountCents int64
	Description string
}

// PaymentGateway charges a user for a renewal period.
type PaymentGateway interface {
	// Charge returns nil when the payment succeeded, ErrPaymentDeclined (possibly
	// wrapped) when it was refused, or another error when the gateway failed.
	Charge(ctx context.Context, charge Charge) error
}

// SimulatedGateway approves charges with probability SuccessRate.
type SimulatedGateway struct {
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// DefaultSuccessRate is the share of simulated charges that succeed.
const DefaultSuccessRate = 0.9

// NewSimulatedGateway creates a gateway that succeeds with the given rate. A nil
// rng seeds a fresh source.
func NewSimulatedGateway(successRate float64, rng *rand.Rand) *SimulatedGateway {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &SimulatedGateway{
		successRate: successRate,
		rng:         rng,
	}
}

// Charge draws a number in [0, 1) and succeeds when it is below the rate.
func (g *SimulatedGateway) Charge(ctx context.Context, charge Charge) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll >= g.successRate {
		return ErrPaymentDeclined
	}
	return nil
}

// FixedGateway always approves or always declines. It records every charge.
type FixedGateway struct {
	approve bool

	mu      sync.Mutex
	charges []Charge
}

// NewFixedGateway creates a gateway with a fixed outcome.
func NewFixedGateway(approve bool) *FixedGateway {
	return &FixedGateway{approve: approve}
}

// Charge records the charge and returns the fixed outcome.
func (g *FixedGateway) Charge(ctx context.Context, charge Charge) error {
	g.mu.Lock()
	g.charges = append(g.charges, charge)
	g.mu.Unlock()

	if !g.approve {
		return ErrPaymentDeclined
	}
	return nil
}

// Charges returns a copy of the recorded charges.
func (g *FixedGateway) Charges() []Charge {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Charge, len(g.charges))
	copy(out, g.charges)
	return out
}

// IsDeclined reports whether err is a declined payment rather than a gateway failure.
func IsDeclined(err error) bool {
	return errors.Is(err, ErrPaymentDeclined)
}
