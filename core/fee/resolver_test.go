package fee

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/osei222/schoolfees/core"
)

func assignment(year, term, feeType, amount, level string) Assignment {
	return Assignment{
		AcademicYear: year,
		Term:         term,
		FeeType:      feeType,
		Amount:       core.MustAmount(amount),
		Level:        level,
	}
}

func payment(studentID int, year, term, amount string) Payment {
	return Payment{
		StudentID:    studentID,
		AcademicYear: year,
		Term:         term,
		Amount:       core.MustAmount(amount),
	}
}

func TestResolve(t *testing.T) {
	sctx := StudentContext{StudentID: 1, AcademicYear: "2025/2026", Term: "Term 1", Level: "JHS 1"}

	tests := []struct {
		name        string
		assignments []Assignment
		payments    []Payment
		sctx        StudentContext
		wantTotal   string
		wantPaid    string
		wantBalance string
		wantStatus  Status
		wantWarning bool
	}{
		{
			name:        "two payments against one charge",
			assignments: []Assignment{assignment("2025/2026", "Term 1", "Tuition", "1000.00", "All")},
			payments:    []Payment{payment(1, "2025/2026", "Term 1", "300.00"), payment(1, "2025/2026", "Term 1", "400.00")},
			sctx:        sctx,
			wantTotal:   "1000.00", wantPaid: "700.00", wantBalance: "300.00", wantStatus: StatusPartial,
		},
		{
			name:        "no payments",
			assignments: []Assignment{assignment("2025/2026", "Term 1", "Tuition", "1000.00", "All")},
			sctx:        sctx,
			wantTotal:   "1000.00", wantPaid: "0.00", wantBalance: "1000.00", wantStatus: StatusUnpaid,
		},
		{
			name:        "paid exactly",
			assignments: []Assignment{assignment("2025/2026", "Term 1", "Tuition", "1000.00", "All")},
			payments:    []Payment{payment(1, "2025/2026", "Term 1", "1000.00")},
			sctx:        sctx,
			wantTotal:   "1000.00", wantPaid: "1000.00", wantBalance: "0.00", wantStatus: StatusPaid,
		},
		{
			name:        "one pesewa short",
			assignments: []Assignment{assignment("2025/2026", "Term 1", "Tuition", "1000.00", "All")},
			payments:    []Payment{payment(1, "2025/2026", "Term 1", "999.99")},
			sctx:        sctx,
			wantTotal:   "1000.00", wantPaid: "999.99", wantBalance: "0.01", wantStatus: StatusPartial,
		},
		{
			name: "level filter",
			assignments: []Assignment{
				assignment("2025/2026", "Term 1", "Tuition", "1000.00", "All"),
				assignment("2025/2026", "Term 1", "ICT", "50.00", "JHS 3"),
				assignment("2025/2026", "Term 1", "Sports", "20.00", "JHS 1"),
			},
			sctx:      sctx,
			wantTotal: "1020.00", wantPaid: "0.00", wantBalance: "1020.00", wantStatus: StatusUnpaid,
		},
		{
			name: "other periods and students excluded",
			assignments: []Assignment{
				assignment("2025/2026", "Term 1", "Tuition", "1000.00", "All"),
				assignment("2025/2026", "Term 2", "Tuition", "1000.00", "All"),
			},
			payments: []Payment{
				payment(1, "2025/2026", "Term 1", "100.00"),
				payment(1, "2025/2026", "Term 2", "500.00"),
				payment(1, "2024/2025", "Term 1", "500.00"),
				payment(2, "2025/2026", "Term 1", "500.00"),
			},
			sctx:      sctx,
			wantTotal: "1000.00", wantPaid: "100.00", wantBalance: "900.00", wantStatus: StatusPartial,
		},
		{
			name:       "nothing configured, nothing paid",
			sctx:       sctx,
			wantTotal:  "0.00",
			wantPaid:   "0.00",
			wantBalance: "0.00",
			wantStatus: StatusPaid,
		},
		{
			name:        "payment with no matching charge",
			payments:    []Payment{payment(1, "2025/2026", "Term 1", "200.00")},
			sctx:        sctx,
			wantTotal:   "0.00",
			wantPaid:    "200.00",
			wantBalance: "0.00",
			wantStatus:  StatusPaid,
			wantWarning: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := Resolve(tt.assignments, tt.payments, tt.sctx)

			if want := core.MustAmount(tt.wantTotal); !sum.TotalFees.Equal(want) {
				t.Errorf("TotalFees = %v; want %v", sum.TotalFees, want)
			}
			if want := core.MustAmount(tt.wantPaid); !sum.PaidAmount.Equal(want) {
				t.Errorf("PaidAmount = %v; want %v", sum.PaidAmount, want)
			}
			if want := core.MustAmount(tt.wantBalance); !sum.Balance.Equal(want) {
				t.Errorf("Balance = %v; want %v", sum.Balance, want)
			}
			if sum.Status != tt.wantStatus {
				t.Errorf("Status = %v; want %v", sum.Status, tt.wantStatus)
			}
			if tt.wantWarning && sum.Warning != ErrNoMatchingCharges {
				t.Errorf("Warning = %v; want %v", sum.Warning, ErrNoMatchingCharges)
			}
			if !tt.wantWarning && sum.Warning != nil {
				t.Errorf("Warning = %v; want nil", sum.Warning)
			}

			// deterministic on the same inputs
			again := Resolve(tt.assignments, tt.payments, tt.sctx)
			if !again.Balance.Equal(sum.Balance) || again.Status != sum.Status {
				t.Error("Resolve() is not deterministic")
			}
		})
	}
}

func TestSummary_CheckPayment(t *testing.T) {
	sum := Summary{
		TotalFees:  core.MustAmount("1000.00"),
		PaidAmount: core.MustAmount("700.00"),
		Balance:    core.MustAmount("300.00"),
		Status:     StatusPartial,
	}

	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{name: "valid", amount: "100.00"},
		{name: "exactly the balance", amount: "300.00"},
		{name: "zero", amount: "0", wantErr: ErrInvalidAmount},
		{name: "negative", amount: "-10.00", wantErr: ErrInvalidAmount},
		{name: "one pesewa over", amount: "300.01", wantErr: ErrOverpayment},
		{name: "way over", amount: "10000.00", wantErr: ErrOverpayment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := sum.CheckPayment(core.MustAmount(tt.amount)); err != tt.wantErr {
				t.Errorf("CheckPayment() error = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_status(t *testing.T) {
	tests := []struct {
		total, paid string
		want        Status
	}{
		{"1000.00", "0", StatusUnpaid},
		{"1000.00", "0.01", StatusPartial},
		{"1000.00", "999.99", StatusPartial},
		{"1000.00", "1000.00", StatusPaid},
		{"1000.00", "1000.01", StatusPaid},
		{"0", "0", StatusPaid},
	}
	for _, tt := range tests {
		if got := status(core.MustAmount(tt.total), decimal.RequireFromString(tt.paid)); got != tt.want {
			t.Errorf("status(%s, %s) = %v; want %v", tt.total, tt.paid, got, tt.want)
		}
	}
}
