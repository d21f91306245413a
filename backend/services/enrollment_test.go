package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"scholarly/backend/payments"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEnrollment(f *fixture, p payments.Processor) *EnrollmentService {
	return NewEnrollmentService(f.users, f.courses, p, EnrollmentOptions{
		FeePercent: 30,
		Currency:   "usd",
		SuccessURL: "http://localhost:3000/stripe/success/",
		CancelURL:  "http://localhost:3000/stripe/cancel",
	})
}

func TestEnrollFreeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newEnrollment(f, &mockProcessor{})

	course, err := svc.EnrollFree(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)
	assert.Equal(t, f.free.ID, course.ID)

	_, err = svc.EnrollFree(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)

	ids, err := f.users.CourseIDs(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.free.ID}, ids)
}

func TestEnrollFreeRejectsPaidCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newEnrollment(f, &mockProcessor{})

	_, err := svc.EnrollFree(ctx, f.student.ID, f.paid.ID)
	assert.True(t, errors.Is(err, ErrWrongEnrollmentType))

	ok, err := f.users.HasCourse(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEnrollFreeUnknownCourse(t *testing.T) {
	f := newFixture()
	svc := newEnrollment(f, &mockProcessor{})

	_, err := svc.EnrollFree(context.Background(), f.student.ID, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInitiatePaidEnrollmentChargesPlatformFee(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	p.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req payments.CheckoutRequest) bool {
		return req.Amount == 10000 &&
			req.Fee == 3000 &&
			req.Currency == "usd" &&
			req.Destination == "acct_123" &&
			req.ProductName == "Go Advanced" &&
			req.SuccessURL == fmt.Sprintf("http://localhost:3000/stripe/success/%d", f.paid.ID)
	})).Return(&payments.Session{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil)
	svc := newEnrollment(f, p)

	session, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	p.AssertExpectations(t)

	user, err := f.users.FindByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.True(t, user.HasPendingSession(f.paid.ID))
	assert.Equal(t, "cs_1", user.StripeSessionID)
}

func TestInitiatePaidEnrollmentReplacesPendingSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	p.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&payments.Session{ID: "cs_1"}, nil).Once()
	p.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&payments.Session{ID: "cs_2"}, nil).Once()
	svc := newEnrollment(f, p)

	_, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	_, err = svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)

	user, err := f.users.FindByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_2", user.StripeSessionID)
}

func TestInitiatePaidEnrollmentRejectsFreeCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	svc := newEnrollment(f, p)

	_, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.free.ID)
	assert.True(t, errors.Is(err, ErrWrongEnrollmentType))
	p.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)

	user, err := f.users.FindByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, user.StripeSessionID)
}

func TestInitiatePaidEnrollmentProcessorFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	p.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe down"))
	svc := newEnrollment(f, p)

	_, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.NotContains(t, err.(*Error).Message, "stripe down")

	user, err := f.users.FindByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, user.StripeSessionID)
}

func TestConfirmPaidEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	p.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&payments.Session{ID: "cs_1"}, nil)
	p.On("RetrieveSession", mock.Anything, "cs_1").Return(&payments.Session{ID: "cs_1", PaymentStatus: "paid"}, nil)
	svc := newEnrollment(f, p)

	_, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)

	res, err := svc.ConfirmPaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, f.paid.ID, res.Course.ID)

	ok, err := f.users.HasCourse(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	user, err := f.users.FindByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Empty(t, user.StripeSessionID)

	// the session is consumed, so a replay grants nothing new
	_, err = svc.ConfirmPaidEnrollment(ctx, f.student.ID, f.paid.ID)
	assert.True(t, errors.Is(err, ErrNoPendingSession))
	ids, err := f.users.CourseIDs(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{f.paid.ID}, ids)
}

func TestConfirmPaidEnrollmentUnpaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	p.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&payments.Session{ID: "cs_1"}, nil)
	p.On("RetrieveSession", mock.Anything, "cs_1").Return(&payments.Session{ID: "cs_1", PaymentStatus: "unpaid"}, nil)
	svc := newEnrollment(f, p)

	_, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)

	res, err := svc.ConfirmPaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.False(t, res.Success)

	ok, err := f.users.HasCourse(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err := f.users.FindByID(ctx, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, "cs_1", user.StripeSessionID)
}

func TestConfirmPaidEnrollmentWithoutSession(t *testing.T) {
	f := newFixture()
	p := &mockProcessor{}
	svc := newEnrollment(f, p)

	_, err := svc.ConfirmPaidEnrollment(context.Background(), f.student.ID, f.paid.ID)
	assert.True(t, errors.Is(err, ErrNoPendingSession))
	p.AssertNotCalled(t, "RetrieveSession", mock.Anything, mock.Anything)
}

func TestConfirmPaidEnrollmentOtherCourse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	p := &mockProcessor{}
	p.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(&payments.Session{ID: "cs_1"}, nil)
	svc := newEnrollment(f, p)

	_, err := svc.InitiatePaidEnrollment(ctx, f.student.ID, f.paid.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmPaidEnrollment(ctx, f.student.ID, f.free.ID)
	assert.True(t, errors.Is(err, ErrNoPendingSession))
}

func TestCheckEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newEnrollment(f, &mockProcessor{})

	status, err := svc.CheckEnrollment(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)
	assert.False(t, status.Status)
	assert.Equal(t, f.free.ID, status.Course.ID)

	_, err = svc.EnrollFree(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)

	status, err = svc.CheckEnrollment(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)
	assert.True(t, status.Status)

	_, err = svc.CheckEnrollment(ctx, f.student.ID, 9999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEnrollmentPayloadHidesInstructorEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newEnrollment(f, &mockProcessor{})

	status, err := svc.CheckEnrollment(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)
	course, err := svc.EnrollFree(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)

	for _, payload := range []interface{}{status, course} {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.NotContains(t, string(data), f.instructor.Email)
		assert.NotContains(t, string(data), "acct_123")
	}
	require.NotNil(t, course.Instructor)
	assert.Equal(t, f.instructor.Name, course.Instructor.Name)
}

func TestEnrolledCourseRequiresEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := newEnrollment(f, &mockProcessor{})

	_, err := svc.EnrolledCourse(ctx, f.student.ID, "go-basics")
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = svc.EnrollFree(ctx, f.student.ID, f.free.ID)
	require.NoError(t, err)
	course, err := svc.EnrolledCourse(ctx, f.student.ID, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, "Go Basics", course.Name)

	courses, err := svc.UserCourses(ctx, f.student.ID)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, f.free.ID, courses[0].ID)
}
