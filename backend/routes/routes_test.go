package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"scholarly/backend/config"
	"scholarly/backend/models"
	"scholarly/backend/payments"
	"scholarly/backend/services"
	"scholarly/backend/store/memstore"
	"scholarly/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeProcessor struct {
	mock.Mock
}

func (m *fakeProcessor) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.Session, error) {
	args := m.Called(req)
	s, _ := args.Get(0).(*payments.Session)
	return s, args.Error(1)
}

func (m *fakeProcessor) RetrieveSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	args := m.Called(sessionID)
	s, _ := args.Get(0).(*payments.Session)
	return s, args.Error(1)
}

func (m *fakeProcessor) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

func (m *fakeProcessor) OnboardingLink(ctx context.Context, accountID, redirectURL string) (string, error) {
	args := m.Called(accountID, redirectURL)
	return args.String(0), args.Error(1)
}

func (m *fakeProcessor) Account(ctx context.Context, accountID string) (*payments.Account, error) {
	args := m.Called(accountID)
	a, _ := args.Get(0).(*payments.Account)
	return a, args.Error(1)
}

func (m *fakeProcessor) Balance(ctx context.Context, accountID string) (*payments.Balance, error) {
	args := m.Called(accountID)
	b, _ := args.Get(0).(*payments.Balance)
	return b, args.Error(1)
}

func (m *fakeProcessor) LoginLink(ctx context.Context, accountID string) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

type nopMailer struct{}

func (nopMailer) Send(context.Context, string, string, string) error { return nil }

var (
	app        *fiber.App
	svc        *Services
	cfg        *config.Config
	db         *memstore.DB
	processor  *fakeProcessor
	instructor models.User
	instToken  string
)

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func setup() {
	cfg = &config.Config{
		JWTSecret:          "testsecret",
		JWTTTL:             time.Hour,
		StripeSuccessURL:   "http://localhost:3000/stripe/success",
		StripeCancelURL:    "http://localhost:3000/stripe/cancel",
		PlatformFeePercent: 30,
		Currency:           "usd",
	}
	logger := log.New(io.Discard, "", 0)

	db = memstore.New()
	processor = &fakeProcessor{}
	users, courses := db.Users(), db.Courses()

	svc = &Services{
		Auth:    services.NewAuthService(users, nopMailer{}, logger),
		Courses: services.NewCourseService(courses, users, logger),
		Enrollments: services.NewEnrollmentService(users, courses, processor, services.EnrollmentOptions{
			FeePercent: cfg.PlatformFeePercent,
			Currency:   cfg.Currency,
			SuccessURL: cfg.StripeSuccessURL,
			CancelURL:  cfg.StripeCancelURL,
		}),
		Completions: services.NewCompletionService(db.Completions()),
		Instructors: services.NewInstructorService(users, processor, services.InstructorOptions{}),
	}

	app = fiber.New(fiber.Config{ErrorHandler: utils.FiberErrorHandler(logger)})
	SetupRoutes(app, svc, cfg, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	instructor = models.User{
		Name:     "Instructor",
		Email:    "instructor@example.com",
		Password: string(hash),
		Role:     []string{models.RoleSubscriber, models.RoleInstructor},
	}
	if err := users.Create(context.Background(), &instructor); err != nil {
		panic(err)
	}
	if err := users.SetStripeAccount(context.Background(), instructor.ID, "acct_instructor"); err != nil {
		panic(err)
	}
	instToken, err = utils.GenerateJWTToken(instructor.ID, cfg)
	if err != nil {
		panic(err)
	}
}

func request(t *testing.T, method, path string, body interface{}, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// signup registers and logs in a fresh student and returns its token.
func signup(t *testing.T, email string) string {
	t.Helper()
	resp := request(t, "POST", "/api/register", map[string]string{
		"name": "Student", "email": email, "password": "password123",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "POST", "/api/login", map[string]string{
		"email": email, "password": "password123",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == utils.TokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	var result map[string]interface{}
	decode(t, resp, &result)
	assert.NotEmpty(t, result["user"])
	return result["token"].(string)
}

func createCourse(t *testing.T, name string, paid bool, price float64) models.Course {
	t.Helper()
	resp := request(t, "POST", "/api/course", map[string]interface{}{
		"name": name, "description": "A course", "paid": paid, "price": price,
	}, instToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var course models.Course
	decode(t, resp, &course)
	return course
}

func TestRegisterDuplicateEmail(t *testing.T) {
	signup(t, "dupe@example.com")

	resp := request(t, "POST", "/api/register", map[string]string{
		"name": "Again", "email": "dupe@example.com", "password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	resp := request(t, "POST", "/api/register", map[string]string{
		"name": "x", "email": "bad", "password": "1",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result utils.ErrorResponse
	decode(t, resp, &result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Details, "email")
}

func TestCurrentUserRequiresToken(t *testing.T) {
	resp := request(t, "GET", "/api/current-user", nil, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = request(t, "GET", "/api/current-user", nil, "not-a-jwt")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token := signup(t, "current@example.com")
	resp = request(t, "GET", "/api/current-user", nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCreateCourseRequiresInstructor(t *testing.T) {
	token := signup(t, "notinstructor@example.com")
	resp := request(t, "POST", "/api/course", map[string]interface{}{"name": "Sneaky"}, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestFreeEnrollmentAndProgress(t *testing.T) {
	course := createCourse(t, "Free Intro", false, 0)
	token := signup(t, "free@example.com")

	resp := request(t, "GET", fmt.Sprintf("/api/check-enrollment/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status services.EnrollmentStatus
	decode(t, resp, &status)
	assert.False(t, status.Status)
	assert.Equal(t, course.ID, status.Course.ID)

	resp = request(t, "GET", "/api/user/course/"+course.Slug, nil, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "POST", fmt.Sprintf("/api/free-enrollment/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = request(t, "POST", fmt.Sprintf("/api/free-enrollment/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "GET", "/api/user-courses", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var mine []models.Course
	decode(t, resp, &mine)
	require.Len(t, mine, 1)

	resp = request(t, "GET", "/api/user/course/"+course.Slug, nil, token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "POST", "/api/mark-completed", map[string]uint{"courseId": course.ID, "lessonId": 11}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "POST", "/api/list-completed", map[string]uint{"courseId": course.ID}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var ids []uint
	decode(t, resp, &ids)
	assert.Equal(t, []uint{11}, ids)

	resp = request(t, "POST", "/api/mark-incomplete", map[string]uint{"courseId": course.ID, "lessonId": 11}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "POST", "/api/list-completed", map[string]uint{"courseId": course.ID}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &ids)
	assert.Empty(t, ids)
}

func TestEnrollmentErrors(t *testing.T) {
	paid := createCourse(t, "Paid Only", true, 20)
	token := signup(t, "errors@example.com")

	resp := request(t, "POST", fmt.Sprintf("/api/free-enrollment/%d", paid.ID), nil, token)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = request(t, "POST", "/api/free-enrollment/424242", nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = request(t, "POST", "/api/free-enrollment/abc", nil, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = request(t, "GET", fmt.Sprintf("/api/stripe-success/%d", paid.ID), nil, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPaidEnrollment(t *testing.T) {
	course := createCourse(t, "Paid Deep Dive", true, 100)
	token := signup(t, "paid@example.com")

	processor.On("CreateCheckoutSession", mock.MatchedBy(func(req payments.CheckoutRequest) bool {
		return req.Destination == "acct_instructor" && req.Amount == 10000 && req.Fee == 3000
	})).Return(&payments.Session{ID: "cs_paid", URL: "https://checkout.example/cs_paid"}, nil).Once()
	processor.On("RetrieveSession", "cs_paid").Return(&payments.Session{ID: "cs_paid", PaymentStatus: "paid"}, nil).Once()

	resp := request(t, "POST", fmt.Sprintf("/api/paid-enrollment/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var session payments.Session
	decode(t, resp, &session)
	assert.Equal(t, "cs_paid", session.ID)

	resp = request(t, "GET", fmt.Sprintf("/api/stripe-success/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var confirmation services.Confirmation
	decode(t, resp, &confirmation)
	assert.True(t, confirmation.Success)

	resp = request(t, "GET", fmt.Sprintf("/api/stripe-success/%d", course.ID), nil, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = request(t, "GET", fmt.Sprintf("/api/check-enrollment/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var status services.EnrollmentStatus
	decode(t, resp, &status)
	assert.True(t, status.Status)
}

func TestPaidEnrollmentUpstreamFailure(t *testing.T) {
	course := createCourse(t, "Flaky Checkout", true, 10)
	token := signup(t, "flaky@example.com")

	processor.On("CreateCheckoutSession", mock.MatchedBy(func(req payments.CheckoutRequest) bool {
		return req.ProductName == "Flaky Checkout"
	})).Return(nil, fmt.Errorf("stripe: api key invalid")).Once()

	resp := request(t, "POST", fmt.Sprintf("/api/paid-enrollment/%d", course.ID), nil, token)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var result utils.ErrorResponse
	decode(t, resp, &result)
	assert.NotContains(t, result.Message, "api key")
}

func TestCourseOwnership(t *testing.T) {
	course := createCourse(t, "Owned Course", false, 0)
	token := signup(t, "owner-check@example.com")

	resp := request(t, "PUT", "/api/course/"+course.Slug, map[string]interface{}{"name": "Mine now"}, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "PUT", fmt.Sprintf("/api/course/publish/%d", course.ID), nil, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "POST", "/api/course/lesson/"+course.Slug, map[string]interface{}{"title": "Lesson one"}, instToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var lesson models.Lesson
	decode(t, resp, &lesson)

	resp = request(t, "DELETE", fmt.Sprintf("/api/course/%s/%d", course.Slug, lesson.ID), nil, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = request(t, "DELETE", fmt.Sprintf("/api/course/%s/%d", course.Slug, lesson.ID), nil, instToken)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "PUT", fmt.Sprintf("/api/course/publish/%d", course.ID), nil, instToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var published models.Course
	decode(t, resp, &published)
	assert.True(t, published.Published)
}

func TestCreateCourseTitleTaken(t *testing.T) {
	createCourse(t, "Unique Title", false, 0)
	resp := request(t, "POST", "/api/course", map[string]interface{}{"name": "unique title"}, instToken)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestInstructorStudentCount(t *testing.T) {
	course := createCourse(t, "Counted", false, 0)
	token := signup(t, "counted@example.com")
	resp := request(t, "POST", fmt.Sprintf("/api/free-enrollment/%d", course.ID), nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = request(t, "POST", "/api/instructor/student-count", map[string]uint{"courseId": course.ID}, instToken)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var count int
	decode(t, resp, &count)
	assert.Equal(t, 2, count)

	resp = request(t, "POST", "/api/instructor/student-count", map[string]uint{"courseId": course.ID}, token)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	resp := request(t, "GET", "/api/does-not-exist", nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestEnrollmentHidesInstructorDetails(t *testing.T) {
	course := createCourse(t, "Private Instructor", false, 0)
	token := signup(t, "private@example.com")

	for _, path := range []string{
		fmt.Sprintf("/api/check-enrollment/%d", course.ID),
		fmt.Sprintf("/api/free-enrollment/%d", course.ID),
	} {
		method := "GET"
		if strings.Contains(path, "free-enrollment") {
			method = "POST"
		}
		resp := request(t, method, path, nil, token)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()
		assert.NotContains(t, string(body), instructor.Email, path)
		assert.NotContains(t, string(body), "acct_instructor", path)
	}
}

func TestMarkCompletedUnknownCourse(t *testing.T) {
	token := signup(t, "nocourse@example.com")

	resp := request(t, "POST", "/api/mark-completed", map[string]uint{"courseId": 999999, "lessonId": 1}, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCSRFProtection(t *testing.T) {
	guarded := fiber.New(fiber.Config{ErrorHandler: utils.FiberErrorHandler(log.New(io.Discard, "", 0))})
	guarded.Use(CSRF(cfg))
	SetupRoutes(guarded, svc, cfg, log.New(io.Discard, "", 0))

	resp, err := guarded.Test(httptest.NewRequest("GET", "/api/csrf-token", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var result map[string]string
	decode(t, resp, &result)
	token := result["csrfToken"]
	require.NotEmpty(t, token)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "_csrf" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)

	body := `{"name":"Csrf","email":"csrf@example.com","password":"password123"}`

	req := httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = guarded.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest("POST", "/api/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Csrf-Token", token)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: token})
	resp, err = guarded.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
