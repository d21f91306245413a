package services

import (
	"context"
	"net/url"

	"scholarly/backend/models"
	"scholarly/backend/payments"
)

type InstructorOptions struct {
	OnboardingRedirectURL string
}

// InstructorService handles payout onboarding with the payment processor.
type InstructorService struct {
	users     UserRepository
	processor payments.Processor
	opts      InstructorOptions
}

func NewInstructorService(users UserRepository, processor payments.Processor, opts InstructorOptions) *InstructorService {
	return &InstructorService{users: users, processor: processor, opts: opts}
}

func (s *InstructorService) user(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore("find user", err, "User not found")
	}
	return user, nil
}

func (s *InstructorService) payoutAccount(ctx context.Context, userID uint) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeAccountID == "" {
		return "", Validation("Payout account is not set up", nil)
	}
	return user.StripeAccountID, nil
}

// MakeInstructor creates the user's payout account on first use and returns the
// onboarding link to redirect to.
func (s *InstructorService) MakeInstructor(ctx context.Context, userID uint) (string, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return "", err
	}

	if user.StripeAccountID == "" {
		accountID, err := s.processor.CreateExpressAccount(ctx, user.Email)
		if err != nil {
			return "", Upstream("create payout account", err)
		}
		if err := s.users.SetStripeAccount(ctx, user.ID, accountID); err != nil {
			return "", fromStore("store payout account", err, "User not found")
		}
		user.StripeAccountID = accountID
	}

	link, err := s.processor.OnboardingLink(ctx, user.StripeAccountID, s.opts.OnboardingRedirectURL)
	if err != nil {
		return "", Upstream("create onboarding link", err)
	}

	u, err := url.Parse(link)
	if err != nil {
		return "", Upstream("parse onboarding link", err)
	}
	q := u.Query()
	q.Set("stripe_user[email]", user.Email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// AccountStatus promotes the user to Instructor once the processor reports that
// the payout account can take charges.
func (s *InstructorService) AccountStatus(ctx context.Context, userID uint) (*models.User, error) {
	accountID, err := s.payoutAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	account, err := s.processor.Account(ctx, accountID)
	if err != nil {
		return nil, Upstream("retrieve payout account", err)
	}
	if !account.ChargesEnabled {
		return nil, Unauthorized("Payout account cannot accept charges yet")
	}
	user, err := s.users.ActivateSeller(ctx, userID, account.Raw)
	if err != nil {
		return nil, fromStore("activate seller", err, "User not found")
	}
	return user, nil
}

func (s *InstructorService) CurrentInstructor(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.HasRole(models.RoleInstructor) {
		return nil, Forbidden("Instructor role required")
	}
	return user, nil
}

func (s *InstructorService) Balance(ctx context.Context, userID uint) (*payments.Balance, error) {
	accountID, err := s.payoutAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	balance, err := s.processor.Balance(ctx, accountID)
	if err != nil {
		return nil, Upstream("retrieve balance", err)
	}
	return balance, nil
}

func (s *InstructorService) PayoutSettings(ctx context.Context, userID uint) (string, error) {
	accountID, err := s.payoutAccount(ctx, userID)
	if err != nil {
		return "", err
	}
	link, err := s.processor.LoginLink(ctx, accountID)
	if err != nil {
		return "", Upstream("create payout settings link", err)
	}
	return link, nil
}
