package report

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/osei222/schoolfees/core/fee"
	"github.com/osei222/schoolfees/core/student"
	"github.com/osei222/schoolfees/core/wallet"
)

// Read-side aggregation for the dashboard and reports pages. Everything here
// is computed from the authoritative collections; nothing is persisted.

type (
	Dashboard struct {
		AcademicYear      string             `json:"academic_year"`
		Term              string             `json:"term"`
		StudentCount      int                `json:"student_count"`
		TotalFees         decimal.Decimal    `json:"total_fees"`
		TotalCollected    decimal.Decimal    `json:"total_collected"`
		TotalOutstanding  decimal.Decimal    `json:"total_outstanding"`
		StatusCounts      map[fee.Status]int `json:"status_counts"`
		IntegrityWarnings int                `json:"integrity_warnings"`
	}

	Collections struct {
		PaymentCount int                        `json:"payment_count"`
		Total        decimal.Decimal            `json:"total"`
		ByMethod     map[string]decimal.Decimal `json:"by_method"`
		ByFeeType    map[string]decimal.Decimal `json:"by_fee_type"`
	}

	ClassOutstanding struct {
		Class        string          `json:"class"`
		StudentCount int             `json:"student_count"`
		Outstanding  decimal.Decimal `json:"outstanding"`
	}

	WalletSummary struct {
		Account        wallet.Account  `json:"account"`
		TopUpTotal     decimal.Decimal `json:"topup_total"`
		PurchaseTotal  decimal.Decimal `json:"purchase_total"`
		SMSUnitsUsed   int             `json:"sms_units_used"`
		SMSUnitsBought int             `json:"sms_units_bought"`
	}

	Service struct {
		studentSvc *student.Service
		feeSvc     *fee.Service
		walletSvc  *wallet.Service
	}
)

func NewService(studentSvc *student.Service, feeSvc *fee.Service, walletSvc *wallet.Service) *Service {
	return &Service{studentSvc: studentSvc, feeSvc: feeSvc, walletSvc: walletSvc}
}

func (svc *Service) Dashboard(ctx context.Context, academicYear, term string) (Dashboard, error) {
	rows, err := svc.studentSvc.FilterWithSummaries(ctx, student.QueryFilter{
		AcademicYear: academicYear,
		Term:         term,
	})
	if err != nil {
		return Dashboard{}, err
	}

	dash := Dashboard{
		AcademicYear: academicYear,
		Term:         term,
		StudentCount: len(rows),
		StatusCounts: make(map[fee.Status]int, 3),
	}
	for _, row := range rows {
		dash.TotalFees = dash.TotalFees.Add(row.Summary.TotalFees)
		dash.TotalCollected = dash.TotalCollected.Add(row.Summary.PaidAmount)
		dash.TotalOutstanding = dash.TotalOutstanding.Add(row.Summary.Balance)
		dash.StatusCounts[row.Summary.Status]++
		if row.Summary.Warning != nil {
			dash.IntegrityWarnings++
		}
	}
	return dash, nil
}

func (svc *Service) Collections(ctx context.Context, filter fee.QueryFilter) (Collections, error) {
	payments, err := svc.feeSvc.FilterPayments(ctx, filter)
	if err != nil {
		return Collections{}, err
	}

	col := Collections{
		PaymentCount: len(payments),
		ByMethod:     make(map[string]decimal.Decimal),
		ByFeeType:    make(map[string]decimal.Decimal),
	}
	for _, p := range payments {
		col.Total = col.Total.Add(p.Amount)
		col.ByMethod[p.Method] = col.ByMethod[p.Method].Add(p.Amount)
		if p.FeeType != "" {
			col.ByFeeType[p.FeeType] = col.ByFeeType[p.FeeType].Add(p.Amount)
		}
	}
	return col, nil
}

func (svc *Service) OutstandingByClass(ctx context.Context, academicYear, term string) ([]ClassOutstanding, error) {
	rows, err := svc.studentSvc.FilterWithSummaries(ctx, student.QueryFilter{
		AcademicYear: academicYear,
		Term:         term,
	})
	if err != nil {
		return nil, err
	}

	byClass := make(map[string]*ClassOutstanding)
	for _, row := range rows {
		entry, ok := byClass[row.Class]
		if !ok {
			entry = &ClassOutstanding{Class: row.Class}
			byClass[row.Class] = entry
		}
		entry.StudentCount++
		entry.Outstanding = entry.Outstanding.Add(row.Summary.Balance)
	}

	out := make([]ClassOutstanding, 0, len(byClass))
	for _, entry := range byClass {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out, nil
}

func (svc *Service) WalletSummary(ctx context.Context, limit int) (WalletSummary, error) {
	acct, err := svc.walletSvc.Account(ctx)
	if err != nil {
		return WalletSummary{}, err
	}
	txns, err := svc.walletSvc.Transactions(ctx, limit)
	if err != nil {
		return WalletSummary{}, err
	}

	sum := WalletSummary{Account: acct}
	for _, txn := range txns {
		switch txn.Type {
		case wallet.TypeTopUp:
			sum.TopUpTotal = sum.TopUpTotal.Add(txn.AmountDelta)
		case wallet.TypeSMSPurchase:
			sum.PurchaseTotal = sum.PurchaseTotal.Add(txn.AmountDelta.Neg())
			sum.SMSUnitsBought += txn.SMSUnitsDelta
		case wallet.TypeSMSUsage:
			sum.SMSUnitsUsed += -txn.SMSUnitsDelta
		}
	}
	return sum, nil
}
