package fee

import (
	"context"
	"time"

	"github.com/osei222/schoolfees/core"
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		// QueryAssignments applies AND on the non-zero arguments; empty level matches all.
		QueryAssignments(ctx context.Context, academicYear, term, level string) ([]Assignment, error)
		UpdateAssignment(ctx context.Context, a Assignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int) error

		// CreatePayment must enforce reference uniqueness and report a
		// collision as ErrDuplicateReference.
		CreatePayment(ctx context.Context, p Payment) (Payment, error)
		GetPaymentByID(ctx context.Context, id int) (Payment, error)
		FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error)
	}

	Service struct {
		repo  Repository
		cache *summaryCache
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, cache: newSummaryCache()}
}

// Summary resolves (and memoizes) the student's position for their current period.
func (svc *Service) Summary(ctx context.Context, sctx StudentContext) (Summary, error) {
	key := cacheKey{StudentID: sctx.StudentID, AcademicYear: sctx.AcademicYear, Term: sctx.Term}
	if sum, ok := svc.cache.get(key); ok {
		return sum, nil
	}

	sum, err := svc.resolve(ctx, sctx)
	if err != nil {
		return Summary{}, err
	}
	svc.cache.set(key, sum)
	return sum, nil
}

func (svc *Service) resolve(ctx context.Context, sctx StudentContext) (Summary, error) {
	assignments, err := svc.repo.QueryAssignments(ctx, sctx.AcademicYear, sctx.Term, "")
	if err != nil {
		return Summary{}, err
	}
	payments, err := svc.repo.FilterPayments(ctx, QueryFilter{
		StudentID:    sctx.StudentID,
		AcademicYear: sctx.AcademicYear,
		Term:         sctx.Term,
	})
	if err != nil {
		return Summary{}, err
	}
	return Resolve(assignments, payments, sctx), nil
}

// RecordPayment validates and persists one payment for the student described
// by sctx. The acceptance checks run against a fresh resolution so a stale
// cache can never let an overpayment through.
func (svc *Service) RecordPayment(ctx context.Context, sctx StudentContext, np NewPayment) (Payment, error) {
	if np.AcademicYear == "" {
		np.AcademicYear = sctx.AcademicYear
	}
	if np.Term == "" {
		np.Term = sctx.Term
	}
	sctx.AcademicYear, sctx.Term = np.AcademicYear, np.Term

	assignments, err := svc.repo.QueryAssignments(ctx, sctx.AcademicYear, sctx.Term, "")
	if err != nil {
		return Payment{}, err
	}
	payments, err := svc.repo.FilterPayments(ctx, QueryFilter{
		StudentID:    sctx.StudentID,
		AcademicYear: sctx.AcademicYear,
		Term:         sctx.Term,
	})
	if err != nil {
		return Payment{}, err
	}

	sum := Resolve(assignments, payments, sctx)
	if err = sum.CheckPayment(np.Amount); err != nil {
		return Payment{}, core.NewValidationError(err, core.FieldError{Field: "amount", Error: err.Error()})
	}
	if np.FeeType != "" {
		fsum := Resolve(filterByFeeType(assignments, np.FeeType), filterPaymentsByFeeType(payments, np.FeeType), sctx)
		if err = fsum.CheckPayment(np.Amount); err != nil {
			return Payment{}, core.NewValidationError(err, core.FieldError{Field: "amount", Error: err.Error()})
		}
	}

	now := time.Now().UTC()
	paidAt := np.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	reference := core.CleanString(np.Reference)
	if reference == "" {
		reference = core.ShortRef("PAY")
	}

	pmt := Payment{
		StudentID:    sctx.StudentID,
		Reference:    reference,
		Amount:       np.Amount,
		Method:       np.Method,
		FeeType:      np.FeeType,
		Term:         np.Term,
		AcademicYear: np.AcademicYear,
		PaidAt:       paidAt.UTC(),
		CreatedAt:    now,
	}
	pmt, err = svc.repo.CreatePayment(ctx, pmt)
	if err != nil {
		if err == ErrDuplicateReference {
			return Payment{}, core.NewValidationError(err, core.FieldError{Field: "reference", Error: err.Error()})
		}
		return Payment{}, err
	}

	svc.cache.invalidate(cacheKey{StudentID: sctx.StudentID, AcademicYear: np.AcademicYear, Term: np.Term})
	return pmt, nil
}

func (svc *Service) GetPayment(ctx context.Context, id int) (Payment, error) {
	return svc.repo.GetPaymentByID(ctx, id)
}

func (svc *Service) FilterPayments(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	return svc.repo.FilterPayments(ctx, filter)
}

// CreateAssignment configures a new charge. The (year, term, feeType, level)
// tuple must be unique.
func (svc *Service) CreateAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	if na.Amount.Sign() < 0 {
		err := ErrInvalidAmount
		return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "amount", Error: err.Error()})
	}

	existing, err := svc.repo.QueryAssignments(ctx, na.AcademicYear, na.Term, "")
	if err != nil {
		return Assignment{}, err
	}
	for _, a := range existing {
		if a.FeeType == na.FeeType && a.Level == na.Level {
			return Assignment{}, core.NewValidationError(ErrAssignmentExists,
				core.FieldError{Field: "fee_type", Error: ErrAssignmentExists.Error()})
		}
	}

	now := time.Now().UTC()
	a := Assignment{
		AcademicYear: na.AcademicYear,
		Term:         na.Term,
		FeeType:      na.FeeType,
		Amount:       na.Amount,
		Level:        na.Level,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	a, err = svc.repo.CreateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, err
	}

	svc.cache.invalidatePeriod(a.AcademicYear, a.Term)
	return a, nil
}

func (svc *Service) QueryAssignments(ctx context.Context, academicYear, term, level string) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, academicYear, term, level)
}

// UpdateAssignment changes a configured charge. Refused once payments exist
// for its (year, term): billed charges are immutable.
func (svc *Service) UpdateAssignment(ctx context.Context, id int, na NewAssignment) (Assignment, error) {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	if err = svc.checkNotBilled(ctx, a); err != nil {
		return Assignment{}, err
	}
	if na.Amount.Sign() < 0 {
		err = ErrInvalidAmount
		return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "amount", Error: err.Error()})
	}

	a.FeeType = na.FeeType
	a.Amount = na.Amount
	a.Level = na.Level
	a.UpdatedAt = time.Now().UTC()
	a, err = svc.repo.UpdateAssignment(ctx, a)
	if err != nil {
		return Assignment{}, err
	}

	svc.cache.invalidatePeriod(a.AcademicYear, a.Term)
	return a, nil
}

func (svc *Service) DeleteAssignment(ctx context.Context, id int) error {
	a, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.checkNotBilled(ctx, a); err != nil {
		return err
	}
	if err = svc.repo.DeleteAssignment(ctx, id); err != nil {
		return err
	}
	svc.cache.invalidatePeriod(a.AcademicYear, a.Term)
	return nil
}

func (svc *Service) checkNotBilled(ctx context.Context, a Assignment) error {
	payments, err := svc.repo.FilterPayments(ctx, QueryFilter{
		AcademicYear: a.AcademicYear,
		Term:         a.Term,
	})
	if err != nil {
		return err
	}
	// a payment with no fee type bills the period as a whole
	for _, p := range payments {
		if p.FeeType == "" || p.FeeType == a.FeeType {
			return core.NewValidationError(ErrAssignmentBilled)
		}
	}
	return nil
}
