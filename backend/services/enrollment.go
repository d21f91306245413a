package services

import (
	"context"
	"fmt"
	"strings"

	"scholarly/backend/models"
	"scholarly/backend/payments"
)

type EnrollmentOptions struct {
	FeePercent float64
	Currency   string
	SuccessURL string
	CancelURL  string
}

// EnrollmentService grants course access, directly for free courses and after
// checkout confirmation for paid ones.
type EnrollmentService struct {
	users     UserRepository
	courses   CourseRepository
	processor payments.Processor
	opts      EnrollmentOptions
}

func NewEnrollmentService(users UserRepository, courses CourseRepository, processor payments.Processor, opts EnrollmentOptions) *EnrollmentService {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	return &EnrollmentService{users: users, courses: courses, processor: processor, opts: opts}
}

type EnrollmentStatus struct {
	Status bool           `json:"status"`
	Course *models.Course `json:"course"`
}

type Confirmation struct {
	Success bool           `json:"success"`
	Course  *models.Course `json:"course"`
}

func (s *EnrollmentService) course(ctx context.Context, courseID uint) (*models.Course, error) {
	if courseID == 0 {
		return nil, NotFound("Course not found")
	}
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, fromStore("find course", err, "Course not found")
	}
	return course, nil
}

// EnrollFree adds a free course to the user's course set. Enrolling twice is a no-op.
func (s *EnrollmentService) EnrollFree(ctx context.Context, userID, courseID uint) (*models.Course, error) {
	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Paid {
		return nil, WrongEnrollmentType("This is a paid course, use paid enrollment")
	}
	if err := s.users.AddCourse(ctx, userID, course.ID); err != nil {
		return nil, fromStore("grant free course", err, "User not found")
	}
	return course, nil
}

// InitiatePaidEnrollment opens a checkout session for a paid course and remembers
// it on the user. Any earlier pending session is replaced.
func (s *EnrollmentService) InitiatePaidEnrollment(ctx context.Context, userID, courseID uint) (*payments.Session, error) {
	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.Paid {
		return nil, WrongEnrollmentType("This course is free, use free enrollment")
	}
	instructor, err := s.users.FindByID(ctx, course.InstructorID)
	if err != nil {
		return nil, fromStore("find instructor", err, "Instructor not found")
	}
	if instructor.StripeAccountID == "" {
		return nil, Validation("The instructor of this course cannot accept payments yet", nil)
	}

	session, err := s.processor.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		ProductName: course.Name,
		Amount:      payments.ToMinorUnits(course.Price),
		Fee:         payments.PlatformFee(course.Price, s.opts.FeePercent),
		Currency:    s.opts.Currency,
		Destination: instructor.StripeAccountID,
		SuccessURL:  fmt.Sprintf("%s/%d", strings.TrimRight(s.opts.SuccessURL, "/"), course.ID),
		CancelURL:   s.opts.CancelURL,
	})
	if err != nil {
		return nil, Upstream("create checkout session", err)
	}

	if err := s.users.SetPendingSession(ctx, userID, session.ID, course.ID); err != nil {
		return nil, fromStore("store pending session", err, "User not found")
	}
	return session, nil
}

// ConfirmPaidEnrollment checks the user's pending checkout with the processor and,
// once it is paid, grants the course and clears the session together. An unpaid
// session is reported as Success=false rather than as an error.
func (s *EnrollmentService) ConfirmPaidEnrollment(ctx context.Context, userID, courseID uint) (*Confirmation, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fromStore("find user", err, "User not found")
	}
	if !user.HasPendingSession(courseID) {
		return nil, NoPendingSession()
	}

	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}

	session, err := s.processor.RetrieveSession(ctx, user.StripeSessionID)
	if err != nil {
		return nil, Upstream("retrieve checkout session", err)
	}
	if !session.Paid() {
		return &Confirmation{Success: false, Course: course}, nil
	}

	if err := s.users.GrantFromSession(ctx, userID, user.StripeSessionID, course.ID); err != nil {
		return nil, fromStore("grant paid course", err, "User not found")
	}
	return &Confirmation{Success: true, Course: course}, nil
}

// CheckEnrollment reports whether the user holds the course.
func (s *EnrollmentService) CheckEnrollment(ctx context.Context, userID, courseID uint) (*EnrollmentStatus, error) {
	course, err := s.course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ok, err := s.users.HasCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, Upstream("check enrollment", err)
	}
	return &EnrollmentStatus{Status: ok, Course: course}, nil
}

// EnrolledCourse returns the course behind slug if the user holds it.
func (s *EnrollmentService) EnrolledCourse(ctx context.Context, userID uint, slug string) (*models.Course, error) {
	course, err := s.courses.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fromStore("find course", err, "Course not found")
	}
	ok, err := s.users.HasCourse(ctx, userID, course.ID)
	if err != nil {
		return nil, Upstream("check enrollment", err)
	}
	if !ok {
		return nil, Forbidden("You are not enrolled in this course")
	}
	return course, nil
}

func (s *EnrollmentService) UserCourses(ctx context.Context, userID uint) ([]models.Course, error) {
	ids, err := s.users.CourseIDs(ctx, userID)
	if err != nil {
		return nil, Upstream("list user courses", err)
	}
	courses, err := s.courses.FindByIDs(ctx, ids)
	if err != nil {
		return nil, Upstream("load user courses", err)
	}
	return courses, nil
}
