package student

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/fee"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	// Student owns no financial truth: paid/balance/status are derived from
	// fee assignments and payments at read time (see WithSummary).
	Student struct {
		ID            int        `json:"id"`
		Name          string     `json:"name"`
		Class         string     `json:"class"`
		Gender        string     `json:"gender,omitempty"`
		DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
		ParentName    string     `json:"parent_name,omitempty"`
		ParentContact string     `json:"parent_contact,omitempty"`
		ParentEmail   string     `json:"parent_email,omitempty"`
		AcademicYear  string     `json:"academic_year"`
		Term          string     `json:"term"`
		CreatedAt     time.Time  `json:"created_at"` // UTC
		UpdatedAt     time.Time  `json:"updated_at"` // UTC
	}

	// WithSummary is a student plus their resolved position for their
	// current (year, term).
	WithSummary struct {
		Student
		Summary fee.Summary `json:"summary"`
	}

	QueryFilter struct {
		// Search does a case-insensitive match on Name or ParentName.
		Search       string
		Class        string
		AcademicYear string
		Term         string
	}
)

// FeeContext pins fee resolution to this student's current billing period.
func (s Student) FeeContext() fee.StudentContext {
	return fee.StudentContext{
		StudentID:    s.ID,
		AcademicYear: s.AcademicYear,
		Term:         s.Term,
		Level:        s.Class,
	}
}

// API request payloads

type NewStudent struct {
	Name          string     `json:"name" validate:"required"`
	Class         string     `json:"class" validate:"required"`
	Gender        string     `json:"gender"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	ParentName    string     `json:"parent_name"`
	ParentContact string     `json:"parent_contact"`
	ParentEmail   string     `json:"parent_email" validate:"omitempty,email"`
	AcademicYear  string     `json:"academic_year" validate:"required,academic_year"`
	Term          string     `json:"term" validate:"required"`
}

func (ns NewStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

type UpdateStudent struct {
	Name          string     `json:"name"`
	Class         string     `json:"class"`
	Gender        string     `json:"gender"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	ParentName    string     `json:"parent_name"`
	ParentContact string     `json:"parent_contact"`
	ParentEmail   string     `json:"parent_email" validate:"omitempty,email"`
	AcademicYear  string     `json:"academic_year" validate:"omitempty,academic_year"`
	Term          string     `json:"term"`
}

func (us UpdateStudent) Validate(validate *validator.Validate) error {
	return validate.Struct(us)
}
