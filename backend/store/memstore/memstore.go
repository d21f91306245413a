// Package memstore is an in-memory stand-in for the gorm stores, used by tests.
// It returns the same sentinel errors as package store.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"scholarly/backend/models"
	"scholarly/backend/store"
)

type completionKey struct {
	userID, courseID uint
}

// DB holds every table behind one mutex so that multi-table writes are atomic.
type DB struct {
	mu          sync.Mutex
	nextID      uint
	users       map[uint]*models.User
	courses     map[uint]*models.Course
	grants      map[uint]map[uint]time.Time
	completions map[completionKey]map[uint]struct{}
}

func New() *DB {
	return &DB{
		users:       map[uint]*models.User{},
		courses:     map[uint]*models.Course{},
		grants:      map[uint]map[uint]time.Time{},
		completions: map[completionKey]map[uint]struct{}{},
	}
}

func (db *DB) id() uint {
	db.nextID++
	return db.nextID
}

func (db *DB) Users() *Users             { return &Users{db: db} }
func (db *DB) Courses() *Courses         { return &Courses{db: db} }
func (db *DB) Completions() *Completions { return &Completions{db: db} }

func copyUser(u *models.User) *models.User {
	c := *u
	c.Role = append([]string(nil), u.Role...)
	if u.StripeSessionCourseID != nil {
		id := *u.StripeSessionCourseID
		c.StripeSessionCourseID = &id
	}
	return &c
}

type Users struct{ db *DB }

func (s *Users) Create(_ context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if len(user.Role) == 0 {
		user.Role = []string{models.RoleSubscriber}
	}
	user.ID = s.db.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.db.users[user.ID] = copyUser(user)
	return nil
}

func (s *Users) FindByID(_ context.Context, id uint) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrNotFound
}

// grant must be called with the lock held.
func (db *DB) grant(userID, courseID uint) {
	set, ok := db.grants[userID]
	if !ok {
		set = map[uint]time.Time{}
		db.grants[userID] = set
	}
	if _, ok := set[courseID]; !ok {
		set[courseID] = time.Now()
	}
}

func (s *Users) AddCourse(_ context.Context, userID, courseID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[userID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.db.courses[courseID]; !ok {
		return store.ErrNotFound
	}
	s.db.grant(userID, courseID)
	return nil
}

func (s *Users) HasCourse(_ context.Context, userID, courseID uint) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.grants[userID][courseID]
	return ok, nil
}

func (s *Users) CourseIDs(_ context.Context, userID uint) ([]uint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	set := s.db.grants[userID]
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := set[ids[i]], set[ids[j]]
		if ti.Equal(tj) {
			return ids[i] < ids[j]
		}
		return ti.Before(tj)
	})
	return ids, nil
}

func (s *Users) StudentIDs(_ context.Context, courseID uint) ([]uint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := []uint{}
	for userID, set := range s.db.grants {
		if _, ok := set[courseID]; ok {
			ids = append(ids, userID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Users) update(userID uint, fn func(u *models.User)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Users) SetStripeAccount(_ context.Context, userID uint, accountID string) error {
	return s.update(userID, func(u *models.User) { u.StripeAccountID = accountID })
}

func (s *Users) ActivateSeller(ctx context.Context, userID uint, seller []byte) (*models.User, error) {
	err := s.update(userID, func(u *models.User) {
		u.StripeSeller = append([]byte(nil), seller...)
		if !u.HasRole(models.RoleInstructor) {
			u.Role = append(u.Role, models.RoleInstructor)
		}
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, userID)
}

func (s *Users) SetPendingSession(_ context.Context, userID uint, sessionID string, courseID uint) error {
	return s.update(userID, func(u *models.User) {
		u.StripeSessionID = sessionID
		id := courseID
		u.StripeSessionCourseID = &id
	})
}

func (s *Users) GrantFromSession(_ context.Context, userID uint, sessionID string, courseID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[userID]
	if !ok || u.StripeSessionID != sessionID || !u.HasPendingSession(courseID) {
		return store.ErrNoPendingSession
	}
	u.StripeSessionID = ""
	u.StripeSessionCourseID = nil
	s.db.grant(userID, courseID)
	return nil
}

func (s *Users) SetResetCode(_ context.Context, userID uint, code string) error {
	return s.update(userID, func(u *models.User) { u.PasswordResetCode = code })
}

func (s *Users) ResetPassword(_ context.Context, email, code, passwordHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email && u.PasswordResetCode != "" && u.PasswordResetCode == code {
			u.Password = passwordHash
			u.PasswordResetCode = ""
			return nil
		}
	}
	return store.ErrNotFound
}

type Courses struct{ db *DB }

// load must be called with the lock held. The instructor is limited to id and name.
func (db *DB) load(c *models.Course) *models.Course {
	out := *c
	out.Lessons = append([]models.Lesson(nil), c.Lessons...)
	sort.SliceStable(out.Lessons, func(i, j int) bool {
		return out.Lessons[i].Position < out.Lessons[j].Position
	})
	out.Instructor = nil
	if u, ok := db.users[c.InstructorID]; ok {
		out.Instructor = &models.User{Name: u.Name}
		out.Instructor.ID = u.ID
	}
	return &out
}

func (s *Courses) CreateWithGrant(_ context.Context, course *models.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.courses {
		if c.Slug == course.Slug {
			return store.ErrDuplicate
		}
	}
	course.ID = s.db.id()
	course.CreatedAt = time.Now()
	course.UpdatedAt = course.CreatedAt
	stored := *course
	stored.Instructor = nil
	stored.Lessons = nil
	s.db.courses[course.ID] = &stored
	s.db.grant(course.InstructorID, course.ID)
	return nil
}

func (s *Courses) FindByID(_ context.Context, id uint) (*models.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.db.load(c), nil
}

func (s *Courses) FindBySlug(_ context.Context, slug string) (*models.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.courses {
		if c.Slug == slug {
			return s.db.load(c), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Courses) SlugExists(_ context.Context, slug string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.courses {
		if c.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Courses) list(keep func(c *models.Course) bool) []models.Course {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := []models.Course{}
	for _, c := range s.db.courses {
		if keep(c) {
			loaded := s.db.load(c)
			loaded.Lessons = nil
			out = append(out, *loaded)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Courses) FindByIDs(_ context.Context, ids []uint) ([]models.Course, error) {
	want := map[uint]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return s.list(func(c *models.Course) bool { return want[c.ID] }), nil
}

func (s *Courses) ListByInstructor(_ context.Context, instructorID uint) ([]models.Course, error) {
	return s.list(func(c *models.Course) bool { return c.InstructorID == instructorID }), nil
}

func (s *Courses) ListPublished(_ context.Context) ([]models.Course, error) {
	return s.list(func(c *models.Course) bool { return c.Published }), nil
}

func (s *Courses) Update(_ context.Context, course *models.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[course.ID]
	if !ok {
		return store.ErrNotFound
	}
	c.Name = course.Name
	c.Description = course.Description
	c.Category = course.Category
	c.Image = course.Image
	c.Paid = course.Paid
	c.Price = course.Price
	c.UpdatedAt = time.Now()
	return nil
}

func (s *Courses) SetPublished(_ context.Context, courseID uint, published bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[courseID]
	if !ok {
		return store.ErrNotFound
	}
	c.Published = published
	return nil
}

func (s *Courses) AddLesson(_ context.Context, courseID uint, lesson *models.Lesson) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[courseID]
	if !ok {
		return store.ErrNotFound
	}
	lesson.ID = s.db.id()
	lesson.CourseID = courseID
	lesson.Position = 1
	for _, l := range c.Lessons {
		if l.Position >= lesson.Position {
			lesson.Position = l.Position + 1
		}
	}
	c.Lessons = append(c.Lessons, *lesson)
	return nil
}

func (s *Courses) UpdateLesson(_ context.Context, lesson *models.Lesson) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[lesson.CourseID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range c.Lessons {
		if c.Lessons[i].ID == lesson.ID {
			c.Lessons[i] = *lesson
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Courses) RemoveLesson(_ context.Context, courseID, lessonID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.courses[courseID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range c.Lessons {
		if c.Lessons[i].ID == lessonID {
			c.Lessons = append(c.Lessons[:i], c.Lessons[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type Completions struct{ db *DB }

func (s *Completions) MarkCompleted(_ context.Context, userID, courseID, lessonID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.courses[courseID]; !ok {
		return store.ErrNotFound
	}
	key := completionKey{userID, courseID}
	set, ok := s.db.completions[key]
	if !ok {
		set = map[uint]struct{}{}
		s.db.completions[key] = set
	}
	set[lessonID] = struct{}{}
	return nil
}

func (s *Completions) MarkIncomplete(_ context.Context, userID, courseID, lessonID uint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.completions[completionKey{userID, courseID}], lessonID)
	return nil
}

func (s *Completions) ListCompleted(_ context.Context, userID, courseID uint) ([]uint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	ids := []uint{}
	for id := range s.db.completions[completionKey{userID, courseID}] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
