package comms

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core/fee"
)

var (
	// errors
	ErrNotFound    = errors.New("record not found")
	ErrNoRecipient = errors.New("recipient phone number is required")
	ErrSendFailed  = errors.New("sms could not be delivered")
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type (
	// Template is a reusable message body with {{.Name}}-style placeholders.
	Template struct {
		ID        int       `json:"id"`
		Name      string    `json:"name"`
		Body      string    `json:"body"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Message is one row of the append-only outbound SMS log.
	Message struct {
		ID               int       `json:"id"`
		Recipient        string    `json:"recipient"`
		Body             string    `json:"body"`
		Status           Status    `json:"status"`
		UnitsUsed        int       `json:"units_used"`
		ProviderResponse string    `json:"-"`
		ErrorMessage     string    `json:"error_message,omitempty"`
		CreatedAt        time.Time `json:"created_at"` // UTC
	}

	// Receipt carries everything the payment-receipt SMS needs. Assembled by
	// the caller so sending stays an explicit second step after the payment
	// commits.
	Receipt struct {
		SchoolName  string
		StudentName string
		Class       string
		Recipient   string
		Payment     fee.Payment
		Summary     fee.Summary
	}
)

// API request payloads

type NewTemplate struct {
	Name string `json:"name" validate:"required,alphanum_"`
	Body string `json:"body" validate:"required"`
}

func (nt NewTemplate) Validate(validate *validator.Validate) error {
	return validate.Struct(nt)
}

type SendRequest struct {
	Recipient string                 `json:"recipient" validate:"required"`
	Message   string                 `json:"message" validate:"required_without=Template"`
	Template  string                 `json:"template"`
	Data      map[string]interface{} `json:"data"`
}

func (sr SendRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
