package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProcessor implements Processor on Stripe Checkout and Connect express accounts.
type StripeProcessor struct {
	api *client.API
}

func NewStripeProcessor(secretKey string) *StripeProcessor {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeProcessor{api: api}
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(req.Fee),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.Destination),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL, PaymentStatus: string(s.PaymentStatus)}, nil
}

func (p *StripeProcessor) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}
	return &Session{ID: s.ID, URL: s.URL, PaymentStatus: string(s.PaymentStatus)}, nil
}

func (p *StripeProcessor) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx

	acct, err := p.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("create express account: %w", err)
	}
	return acct.ID, nil
}

func (p *StripeProcessor) OnboardingLink(ctx context.Context, accountID, redirectURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(redirectURL),
		ReturnURL:  stripe.String(redirectURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	params.Context = ctx

	link, err := p.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("create account link: %w", err)
	}
	return link.URL, nil
}

func (p *StripeProcessor) Account(ctx context.Context, accountID string) (*Account, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := p.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve account %s: %w", accountID, err)
	}
	raw, err := json.Marshal(acct)
	if err != nil {
		return nil, fmt.Errorf("encode account %s: %w", accountID, err)
	}
	return &Account{ID: acct.ID, ChargesEnabled: acct.ChargesEnabled, Raw: raw}, nil
}

func (p *StripeProcessor) Balance(ctx context.Context, accountID string) (*Balance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)

	b, err := p.api.Balance.Get(params)
	if err != nil {
		return nil, fmt.Errorf("retrieve balance for %s: %w", accountID, err)
	}
	return &Balance{Available: amounts(b.Available), Pending: amounts(b.Pending)}, nil
}

func (p *StripeProcessor) LoginLink(ctx context.Context, accountID string) (string, error) {
	params := &stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	}
	params.Context = ctx

	link, err := p.api.LoginLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("create login link for %s: %w", accountID, err)
	}
	return link.URL, nil
}

func amounts(in []*stripe.Amount) []Amount {
	out := make([]Amount, 0, len(in))
	for _, a := range in {
		out = append(out, Amount{Amount: a.Amount, Currency: string(a.Currency)})
	}
	return out
}
