package fee

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// errors
	ErrNotFound           = errors.New("record not found")
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrOverpayment        = errors.New("amount exceeds outstanding balance")
	ErrDuplicateReference = errors.New("a payment with this reference already exists")
	ErrAssignmentExists   = errors.New("a fee of this type already exists for this year, term and level")
	ErrAssignmentBilled   = errors.New("fee already has payments recorded against it")

	// ErrNoMatchingCharges flags money collected against a (year, term) with no
	// configured fee assignment. Carried on Summary, never returned as a failure.
	ErrNoMatchingCharges = errors.New("payments recorded with no matching fee assignment")
)

// LevelAll marks an assignment that applies to every class level.
const LevelAll = "All"

type Status string

const (
	StatusUnpaid  Status = "Unpaid"
	StatusPartial Status = "Partial"
	StatusPaid    Status = "Paid"
)

type (
	// Assignment is a configured charge for a (year, term, level) tuple.
	// Immutable once payments are recorded against its (year, term).
	Assignment struct {
		ID           int             `json:"id"`
		AcademicYear string          `json:"academic_year"`
		Term         string          `json:"term"`
		FeeType      string          `json:"fee_type"`
		Amount       decimal.Decimal `json:"amount"`
		Level        string          `json:"level"`
		CreatedAt    time.Time       `json:"created_at"` // UTC
		UpdatedAt    time.Time       `json:"updated_at"` // UTC
	}

	// Payment is an append-only record of money received. Never mutated.
	Payment struct {
		ID           int             `json:"id"`
		StudentID    int             `json:"student_id"`
		Reference    string          `json:"reference"`
		Amount       decimal.Decimal `json:"amount"`
		Method       string          `json:"method"`
		FeeType      string          `json:"fee_type"`
		Term         string          `json:"term"`
		AcademicYear string          `json:"academic_year"`
		PaidAt       time.Time       `json:"paid_at"`    // UTC
		CreatedAt    time.Time       `json:"created_at"` // UTC
	}

	// StudentContext pins a resolution to one student's billing period.
	StudentContext struct {
		StudentID    int
		AcademicYear string
		Term         string
		Level        string
	}

	// Summary is the derived financial position of one student for one
	// (year, term). Balance is floored at zero for display; over-collection
	// is prevented at write time, not hidden here.
	Summary struct {
		TotalFees  decimal.Decimal `json:"total_fees"`
		PaidAmount decimal.Decimal `json:"paid_amount"`
		Balance    decimal.Decimal `json:"balance"`
		Status     Status          `json:"status"`
		Warning    error           `json:"-"`
	}

	QueryFilter struct {
		StudentID    int
		AcademicYear string
		Term         string
		FeeType      string
		Method       string
		PaidFrom     time.Time
		PaidTo       time.Time
		Limit        int
	}
)

// AppliesTo reports whether the assignment charges the given class level.
func (a Assignment) AppliesTo(level string) bool {
	return a.Level == "" || a.Level == LevelAll || a.Level == level
}

// API request payloads

type NewAssignment struct {
	AcademicYear string          `json:"academic_year" validate:"required,academic_year"`
	Term         string          `json:"term" validate:"required"`
	FeeType      string          `json:"fee_type" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Level        string          `json:"level"`
}

func (na NewAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

type NewPayment struct {
	StudentID    int             `json:"student_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method" validate:"required"`
	FeeType      string          `json:"fee_type"`
	Term         string          `json:"term"`
	AcademicYear string          `json:"academic_year" validate:"omitempty,academic_year"`
	Reference    string          `json:"reference"`
	PaidAt       time.Time       `json:"paid_at"`
}

func (np NewPayment) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}
