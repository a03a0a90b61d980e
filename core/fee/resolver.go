package fee

import "github.com/shopspring/decimal"

// Resolve derives a student's financial position for one (year, term) from the
// configured assignments and the payments recorded against the student.
// Pure and deterministic: same inputs, same Summary.
func Resolve(assignments []Assignment, payments []Payment, sctx StudentContext) Summary {
	var total decimal.Decimal
	for _, a := range assignments {
		if a.AcademicYear != sctx.AcademicYear || a.Term != sctx.Term {
			continue
		}
		if !a.AppliesTo(sctx.Level) {
			continue
		}
		total = total.Add(a.Amount)
	}

	var paid decimal.Decimal
	for _, p := range payments {
		if p.StudentID != sctx.StudentID {
			continue
		}
		// payments for other periods are excluded even if unsettled
		if p.AcademicYear != sctx.AcademicYear || p.Term != sctx.Term {
			continue
		}
		paid = paid.Add(p.Amount)
	}

	sum := Summary{
		TotalFees:  total,
		PaidAmount: paid,
		Balance:    total.Sub(paid),
		Status:     status(total, paid),
	}
	if sum.Balance.Sign() < 0 {
		sum.Balance = decimal.Zero
	}
	if total.IsZero() && paid.Sign() > 0 {
		sum.Warning = ErrNoMatchingCharges
	}
	return sum
}

func status(total, paid decimal.Decimal) Status {
	switch {
	case paid.IsZero():
		if total.IsZero() {
			return StatusPaid
		}
		return StatusUnpaid
	case paid.GreaterThanOrEqual(total):
		return StatusPaid
	default:
		return StatusPartial
	}
}

// CheckPayment validates a prospective payment against the summary's
// outstanding balance. Overpayment is rejected here, never clamped later:
// clamping would bury an accounting error.
func (s Summary) CheckPayment(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(s.TotalFees.Sub(s.PaidAmount)) {
		return ErrOverpayment
	}
	return nil
}

func filterByFeeType(assignments []Assignment, feeType string) []Assignment {
	out := make([]Assignment, 0, len(assignments))
	for _, a := range assignments {
		if a.FeeType == feeType {
			out = append(out, a)
		}
	}
	return out
}

func filterPaymentsByFeeType(payments []Payment, feeType string) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.FeeType == feeType {
			out = append(out, p)
		}
	}
	return out
}
