package records

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"
)

// Store is a mutex-guarded in-memory record set. Ids are sequential per kind
// and never reused.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	authority string

	students     map[int]Student
	courses      map[int]Course
	certificates map[int]Certificate

	nextStudent     int
	nextCourse      int
	nextCertificate int
}

// NewStore returns an empty store. authority is the default certification
// authority for new courses; now defaults to time.Now.
func NewStore(authority string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:             now,
		authority:       authority,
		students:        make(map[int]Student),
		courses:         make(map[int]Course),
		certificates:    make(map[int]Certificate),
		nextStudent:     1,
		nextCourse:      1,
		nextCertificate: 1,
	}
}

/*
====================================
STUDENTS
====================================
*/

// Students returns all students ordered by id.
func (s *Store) Students() []Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.students, func(v Student) int { return v.ID })
}

// Student returns the student with id.
func (s *Store) Student(id int) (Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	return st, nil
}

// CreateStudent validates in and assigns its id and NS-<year>-NNN student id.
func (s *Store) CreateStudent(in Student) (Student, error) {
	if in.Status == "" {
		in.Status = defaultStudentStatus
	}
	if err := validateStudent(in); err != nil {
		return Student{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(in.Email, 0) {
		return Student{}, fmt.Errorf("%w: student with this email already exists", ErrInvalid)
	}
	in.ID = s.nextStudent
	in.StudentID = fmt.Sprintf("NS-%d-%03d", s.now().Year(), in.ID)
	s.nextStudent++
	s.students[in.ID] = in
	return in, nil
}

// UpdateStudent merges the JSON object patch into the stored student. The id
// and student id cannot change.
func (s *Store) UpdateStudent(id int, patch []byte) (Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.students[id]
	if !ok {
		return Student{}, ErrNotFound
	}
	next := cur
	if err := json.Unmarshal(patch, &next); err != nil {
		return Student{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	next.ID, next.StudentID = cur.ID, cur.StudentID
	if err := validateStudent(next); err != nil {
		return Student{}, err
	}
	if s.emailTaken(next.Email, id) {
		return Student{}, fmt.Errorf("%w: student with this email already exists", ErrInvalid)
	}
	s.students[id] = next
	return next, nil
}

// DeleteStudent removes the student with id.
func (s *Store) DeleteStudent(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.students[id]; !ok {
		return ErrNotFound
	}
	delete(s.students, id)
	return nil
}

func (s *Store) emailTaken(email string, except int) bool {
	for id, st := range s.students {
		if id != except && strings.EqualFold(st.Email, email) {
			return true
		}
	}
	return false
}

func validateStudent(st Student) error {
	if strings.TrimSpace(st.Name) == "" {
		return invalid("name", "is required")
	}
	if _, err := mail.ParseAddress(st.Email); err != nil {
		return invalid("email", "must be a valid address")
	}
	if _, err := time.Parse(dateLayout, st.EnrollmentDate); err != nil {
		return invalid("enrollmentDate", "must be YYYY-MM-DD")
	}
	return nil
}

/*
====================================
COURSES
====================================
*/

// Courses returns all courses ordered by id.
func (s *Store) Courses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.courses, func(v Course) int { return v.ID })
}

// Course returns the course with id.
func (s *Store) Course(id int) (Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

// CreateCourse validates in, fills defaults and starts it with no enrolments.
func (s *Store) CreateCourse(in Course) (Course, error) {
	if in.MaxStudents == 0 {
		in.MaxStudents = defaultMaxStudents
	}
	if in.Language == "" {
		in.Language = defaultLanguage
	}
	if in.CertificationAuthority == "" {
		in.CertificationAuthority = s.authority
	}
	if err := validateCourse(in); err != nil {
		return Course{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.codeTaken(in.Code, 0) {
		return Course{}, fmt.Errorf("%w: course with this code already exists", ErrInvalid)
	}
	now := s.now().UTC()
	in.ID = s.nextCourse
	in.EnrolledCount = 0
	in.CreatedAt, in.UpdatedAt = now, now
	s.nextCourse++
	s.courses[in.ID] = in
	return in, nil
}

// UpdateCourse merges patch into the stored course and bumps UpdatedAt.
func (s *Store) UpdateCourse(id int, patch []byte) (Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	next := cur
	if err := json.Unmarshal(patch, &next); err != nil {
		return Course{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	next.ID, next.CreatedAt = cur.ID, cur.CreatedAt
	if err := validateCourse(next); err != nil {
		return Course{}, err
	}
	if s.codeTaken(next.Code, id) {
		return Course{}, fmt.Errorf("%w: course with this code already exists", ErrInvalid)
	}
	next.UpdatedAt = s.now().UTC()
	s.courses[id] = next
	return next, nil
}

// DeleteCourse removes the course with id.
func (s *Store) DeleteCourse(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.courses[id]; !ok {
		return ErrNotFound
	}
	delete(s.courses, id)
	return nil
}

func (s *Store) codeTaken(code string, except int) bool {
	for id, c := range s.courses {
		if id != except && c.Code == code {
			return true
		}
	}
	return false
}

func validateCourse(c Course) error {
	required := []struct{ field, value string }{
		{"title", c.Title},
		{"code", c.Code},
		{"description", c.Description},
		{"category", c.Category},
		{"level", c.Level},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(r.field, "is required")
		}
	}
	if c.Duration <= 0 {
		return invalid("duration", "must be positive")
	}
	if c.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if c.MaxStudents < 0 || c.EnrolledCount < 0 {
		return invalid("maxStudents", "must not be negative")
	}
	return nil
}

/*
====================================
CERTIFICATES
====================================
*/

// Certificates returns all certificates ordered by id.
func (s *Store) Certificates() []Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.certificates, func(v Certificate) int { return v.ID })
}

// Certificate returns the certificate with id.
func (s *Store) Certificate(id int) (Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certificates[id]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return c, nil
}

// IssueCertificate records a completion for an existing student and course.
// Names omitted from in are copied from those records; the issue date is today.
func (s *Store) IssueCertificate(in Certificate) (Certificate, error) {
	if _, err := time.Parse(dateLayout, in.CompletionDate); err != nil {
		return Certificate{}, invalid("completionDate", "must be YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, okStudent := s.students[in.StudentID]
	course, okCourse := s.courses[in.CourseID]
	if !okStudent || !okCourse {
		return Certificate{}, fmt.Errorf("%w: invalid student or course ID", ErrInvalid)
	}
	if in.StudentName == "" {
		in.StudentName = st.Name
	}
	if in.CourseTitle == "" {
		in.CourseTitle = course.Title
	}
	if in.Status == "" {
		in.Status = defaultCertificateStatus
	}

	now := s.now().UTC()
	in.ID = s.nextCertificate
	in.CertificateID = fmt.Sprintf("NS-CERT-%d-%03d", now.Year(), in.ID)
	in.IssueDate = now.Format(dateLayout)
	s.nextCertificate++
	s.certificates[in.ID] = in
	return in, nil
}

// Stats summarizes the store. ThisMonth counts certificates issued in the
// current calendar month.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	month := s.now().UTC().Format("2006-01")
	var thisMonth int
	for _, c := range s.certificates {
		if strings.HasPrefix(c.IssueDate, month) {
			thisMonth++
		}
	}
	return Stats{
		TotalStudents:      len(s.students),
		ActiveCourses:      len(s.courses),
		CertificatesIssued: len(s.certificates),
		ThisMonth:          thisMonth,
	}
}

func sortedValues[T any](m map[int]T, id func(T) int) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int { return id(a) - id(b) })
	return out
}
