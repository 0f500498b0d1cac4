package records

import "time"

// Student is an enrolled learner. StudentID is assigned on create.
type Student struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	StudentID      string `json:"studentId"`
	EnrollmentDate string `json:"enrollmentDate"`
	Status         string `json:"status"`
}

// Course is a catalogue entry. Code is unique.
type Course struct {
	ID                     int       `json:"id"`
	Title                  string    `json:"title"`
	Code                   string    `json:"code"`
	Description            string    `json:"description"`
	Duration               int       `json:"duration"`
	Category               string    `json:"category"`
	Level                  string    `json:"level"`
	EnrolledCount          int       `json:"enrolledCount"`
	Price                  int       `json:"price"`
	Prerequisites          string    `json:"prerequisites,omitempty"`
	InstructorName         string    `json:"instructorName,omitempty"`
	MaxStudents            int       `json:"maxStudents"`
	Language               string    `json:"language"`
	CertificationAuthority string    `json:"certificationAuthority"`
	IsPublished            bool      `json:"isPublished"`
	FinalExamRequired      bool      `json:"finalExamRequired"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// Certificate records a completed course.
type Certificate struct {
	ID             int    `json:"id"`
	CertificateID  string `json:"certificateId"`
	StudentID      int    `json:"studentId"`
	CourseID       int    `json:"courseId"`
	StudentName    string `json:"studentName"`
	CourseTitle    string `json:"courseTitle"`
	CompletionDate string `json:"completionDate"`
	Grade          string `json:"grade,omitempty"`
	IssueDate      string `json:"issueDate"`
	Status         string `json:"status"`
}

// Stats is the dashboard summary.
type Stats struct {
	TotalStudents      int `json:"totalStudents"`
	ActiveCourses      int `json:"activeCourses"`
	CertificatesIssued int `json:"certificatesIssued"`
	ThisMonth          int `json:"thisMonth"`
}

const (
	defaultStudentStatus     = "active"
	defaultCertificateStatus = "issued"
	defaultMaxStudents       = 50
	defaultLanguage          = "English"
	dateLayout               = "2006-01-02"
)
