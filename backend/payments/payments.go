// Package payments talks to the marketplace payment processor.
package payments

import (
	"context"
	"math"
)

// PaymentStatusPaid is the checkout status that unlocks a paid course.
const PaymentStatusPaid = "paid"

// CheckoutRequest describes a single-item purchase. Amounts are in minor currency units.
type CheckoutRequest struct {
	ProductName string
	Amount      int64
	Fee         int64
	Currency    string
	Destination string
	SuccessURL  string
	CancelURL   string
}

type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
}

func (s *Session) Paid() bool {
	return s.PaymentStatus == PaymentStatusPaid
}

type Account struct {
	ID             string
	ChargesEnabled bool
	// Raw is the processor's full account object, kept as an opaque snapshot.
	Raw []byte
}

type Amount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Balance struct {
	Available []Amount `json:"available"`
	Pending   []Amount `json:"pending"`
}

// Processor is the subset of the payment platform the marketplace uses.
type Processor interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	OnboardingLink(ctx context.Context, accountID, redirectURL string) (string, error)
	Account(ctx context.Context, accountID string) (*Account, error)
	Balance(ctx context.Context, accountID string) (*Balance, error)
	LoginLink(ctx context.Context, accountID string) (string, error)
}

// ToMinorUnits converts a major-unit amount (e.g. dollars) to minor units (cents).
func ToMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

// PlatformFee is the marketplace's share of price, in minor units.
func PlatformFee(price, percent float64) int64 {
	return ToMinorUnits(price * percent / 100)
}
