package comms

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/osei222/schoolfees/core"
	"github.com/osei222/schoolfees/core/wallet"
)

type (
	Repository interface {
		CreateTemplate(ctx context.Context, t Template) (Template, error)
		GetTemplateByName(ctx context.Context, name string) (Template, error)
		QueryAllTemplates(ctx context.Context) ([]Template, error)
		UpdateTemplate(ctx context.Context, t Template) (Template, error)
		DeleteTemplate(ctx context.Context, id int) error

		CreateMessage(ctx context.Context, m Message) (Message, error)
		FilterMessages(ctx context.Context, limit int) ([]Message, error)
	}

	Service struct {
		repo      Repository
		smsSvc    core.SMSService
		walletSvc *wallet.Service
		logger    core.Logger
	}
)

func NewService(repo Repository, smsSvc core.SMSService, walletSvc *wallet.Service, logger core.Logger) *Service {
	return &Service{repo: repo, smsSvc: smsSvc, walletSvc: walletSvc, logger: logger}
}

// Send delivers one SMS and settles its unit cost against the wallet.
// The unit check runs before the provider call so a drained wallet never
// produces an unpaid delivery; the debit and the message log are separate
// transactions from whatever workflow triggered the send (a payment that
// already committed stays committed whatever happens here).
func (svc *Service) Send(ctx context.Context, recipient, body string) (Message, error) {
	recipient = core.CleanString(recipient)
	if recipient == "" {
		return Message{}, core.NewValidationError(ErrNoRecipient, core.FieldError{
			Field: "recipient", Error: ErrNoRecipient.Error(),
		})
	}

	acct, err := svc.walletSvc.Account(ctx)
	if err != nil {
		return Message{}, err
	}
	if acct.SMSUnits < 1 {
		return Message{}, wallet.ErrInsufficientUnits
	}

	result := svc.smsSvc.Send(recipient, body)

	msg := Message{
		Recipient:        recipient,
		Body:             body,
		Status:           StatusFailed,
		ProviderResponse: result.Raw,
		ErrorMessage:     result.Err,
		CreatedAt:        time.Now().UTC(),
	}
	if result.Sent {
		msg.Status = StatusSent
		msg.UnitsUsed = 1
		if _, _, err = svc.walletSvc.DebitSMS(ctx, 1, fmt.Sprintf("SMS sent to %s", recipient)); err != nil {
			// delivery already happened; log the unit anyway and surface the miss
			svc.logger.Error(fmt.Sprintf("debiting sms unit for %s: %v", recipient, err), err)
		}
	}

	msg, cerr := svc.repo.CreateMessage(ctx, msg)
	if cerr != nil {
		return Message{}, cerr
	}
	if !result.Sent {
		return msg, ErrSendFailed
	}
	return msg, nil
}

// SendTemplate renders the named template with data and sends the result.
func (svc *Service) SendTemplate(ctx context.Context, name, recipient string, data map[string]interface{}) (Message, error) {
	tpl, err := svc.repo.GetTemplateByName(ctx, name)
	if err != nil {
		return Message{}, err
	}
	body, err := renderBody(tpl.Name, tpl.Body, data)
	if err != nil {
		return Message{}, err
	}
	return svc.Send(ctx, recipient, body)
}

// SendReceipt formats and sends the payment-receipt SMS. Best-effort by
// contract: callers report failure but never unwind the payment.
func (svc *Service) SendReceipt(ctx context.Context, r Receipt) (Message, error) {
	return svc.Send(ctx, r.Recipient, formatReceipt(r))
}

func (svc *Service) CreateTemplate(ctx context.Context, nt NewTemplate) (Template, error) {
	if _, err := renderBody(nt.Name, nt.Body, nil); err != nil {
		return Template{}, core.NewValidationError(err, core.FieldError{Field: "body", Error: "template does not parse"})
	}
	now := time.Now().UTC()
	return svc.repo.CreateTemplate(ctx, Template{
		Name:      core.CleanString(nt.Name),
		Body:      nt.Body,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) UpdateTemplate(ctx context.Context, id int, nt NewTemplate) (Template, error) {
	if _, err := renderBody(nt.Name, nt.Body, nil); err != nil {
		return Template{}, core.NewValidationError(err, core.FieldError{Field: "body", Error: "template does not parse"})
	}
	return svc.repo.UpdateTemplate(ctx, Template{
		ID:        id,
		Name:      core.CleanString(nt.Name),
		Body:      nt.Body,
		UpdatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryTemplates(ctx context.Context) ([]Template, error) {
	return svc.repo.QueryAllTemplates(ctx)
}

func (svc *Service) DeleteTemplate(ctx context.Context, id int) error {
	return svc.repo.DeleteTemplate(ctx, id)
}

func (svc *Service) Messages(ctx context.Context, limit int) ([]Message, error) {
	return svc.repo.FilterMessages(ctx, limit)
}

func renderBody(name, body string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", errors.Wrapf(err, "parsing template %q", name)
	}
	var buff bytes.Buffer
	if err = tmpl.Execute(&buff, data); err != nil {
		return "", errors.Wrapf(err, "rendering template %q", name)
	}
	return buff.String(), nil
}

func formatReceipt(r Receipt) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "*** %s ***\n", r.SchoolName)
	b.WriteString("PAYMENT RECEIPT\n")
	fmt.Fprintf(&b, "Date: %s\n", r.Payment.PaidAt.Format("02/01/2006 03:04 PM"))
	fmt.Fprintf(&b, "Receipt: %s\n\n", r.Payment.Reference)

	fmt.Fprintf(&b, "Student: %s\n", r.StudentName)
	fmt.Fprintf(&b, "Class: %s\n", r.Class)
	fmt.Fprintf(&b, "Term: %s\n\n", r.Payment.Term)

	if r.Payment.FeeType != "" {
		fmt.Fprintf(&b, "Fee Type: %s\n", r.Payment.FeeType)
	}
	fmt.Fprintf(&b, "Amount Paid: GHS %s\n", core.FormatAmount(r.Payment.Amount))
	fmt.Fprintf(&b, "Method: %s\n\n", r.Payment.Method)

	fmt.Fprintf(&b, "Total Fees: GHS %s\n", core.FormatAmount(r.Summary.TotalFees))
	fmt.Fprintf(&b, "Total Paid: GHS %s\n", core.FormatAmount(r.Summary.PaidAmount))
	fmt.Fprintf(&b, "Balance: GHS %s\n\n", core.FormatAmount(r.Summary.Balance))

	switch r.Summary.Status {
	case "Paid":
		b.WriteString("ALL FEES FULLY PAID!\n")
	default:
		fmt.Fprintf(&b, "Outstanding: GHS %s\n", core.FormatAmount(r.Summary.Balance))
	}
	b.WriteString("\nThank you for your payment!")
	return b.String()
}
