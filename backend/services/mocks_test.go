package services

import (
	"context"
	"io"
	"log"

	"scholarly/backend/models"
	"scholarly/backend/payments"
	"scholarly/backend/store/memstore"

	"github.com/stretchr/testify/mock"
)

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.Session, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*payments.Session)
	return s, args.Error(1)
}

func (m *mockProcessor) RetrieveSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	args := m.Called(ctx, sessionID)
	s, _ := args.Get(0).(*payments.Session)
	return s, args.Error(1)
}

func (m *mockProcessor) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockProcessor) OnboardingLink(ctx context.Context, accountID, redirectURL string) (string, error) {
	args := m.Called(ctx, accountID, redirectURL)
	return args.String(0), args.Error(1)
}

func (m *mockProcessor) Account(ctx context.Context, accountID string) (*payments.Account, error) {
	args := m.Called(ctx, accountID)
	a, _ := args.Get(0).(*payments.Account)
	return a, args.Error(1)
}

func (m *mockProcessor) Balance(ctx context.Context, accountID string) (*payments.Balance, error) {
	args := m.Called(ctx, accountID)
	b, _ := args.Get(0).(*payments.Balance)
	return b, args.Error(1)
}

func (m *mockProcessor) LoginLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(ctx, accountID)
	return args.String(0), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	return m.Called(ctx, to, subject, htmlBody).Error(0)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (models.Asset, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.Get(0).(models.Asset), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, asset models.Asset) error {
	return m.Called(ctx, asset).Error(0)
}

var discard = log.New(io.Discard, "", 0)

// fixture seeds an instructor with a payout account, a student, and a free and a paid course.
type fixture struct {
	db         *memstore.DB
	users      *memstore.Users
	courses    *memstore.Courses
	instructor *models.User
	student    *models.User
	free       *models.Course
	paid       *models.Course
}

func newFixture() *fixture {
	ctx := context.Background()
	db := memstore.New()
	f := &fixture{db: db, users: db.Users(), courses: db.Courses()}

	f.instructor = &models.User{Name: "Ada", Email: "ada@example.com", Password: "x", Role: []string{models.RoleSubscriber, models.RoleInstructor}}
	mustNil(f.users.Create(ctx, f.instructor))
	mustNil(f.users.SetStripeAccount(ctx, f.instructor.ID, "acct_123"))
	f.student = &models.User{Name: "Bob", Email: "bob@example.com", Password: "x"}
	mustNil(f.users.Create(ctx, f.student))

	f.free = &models.Course{Name: "Go Basics", Slug: "go-basics", InstructorID: f.instructor.ID, Published: true}
	mustNil(f.courses.CreateWithGrant(ctx, f.free))
	f.paid = &models.Course{Name: "Go Advanced", Slug: "go-advanced", Paid: true, Price: 100, InstructorID: f.instructor.ID, Published: true}
	mustNil(f.courses.CreateWithGrant(ctx, f.paid))
	return f
}

func mustNil(err error) {
	if err != nil {
		panic(err)
	}
}
