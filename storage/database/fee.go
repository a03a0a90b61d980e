package database

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/osei222/schoolfees/core/fee"
)

// uniqueViolation is the psql error code for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

type assignmentRow struct {
	ID           int             `db:"id"`
	AcademicYear string          `db:"academic_year"`
	Term         string          `db:"term"`
	FeeType      string          `db:"fee_type"`
	Amount       decimal.Decimal `db:"amount"`
	Level        string          `db:"level"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r assignmentRow) assignment() fee.Assignment {
	return fee.Assignment(r)
}

type paymentRow struct {
	ID           int             `db:"id"`
	StudentID    int             `db:"student_id"`
	Reference    string          `db:"reference"`
	Amount       decimal.Decimal `db:"amount"`
	Method       string          `db:"method"`
	FeeType      sql.NullString  `db:"fee_type"`
	Term         string          `db:"term"`
	AcademicYear string          `db:"academic_year"`
	PaidAt       time.Time       `db:"paid_at"`
	CreatedAt    time.Time       `db:"created_at"`
}

func (r paymentRow) payment() fee.Payment {
	return fee.Payment{
		ID:           r.ID,
		StudentID:    r.StudentID,
		Reference:    r.Reference,
		Amount:       r.Amount,
		Method:       r.Method,
		FeeType:      r.FeeType.String,
		Term:         r.Term,
		AcademicYear: r.AcademicYear,
		PaidAt:       r.PaidAt,
		CreatedAt:    r.CreatedAt,
	}
}

type feeRepository struct {
	db *sqlx.DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *sqlx.DB) *feeRepository {
	return &feeRepository{db: db}
}

func (repo feeRepository) CreateAssignment(ctx context.Context, a fee.Assignment) (fee.Assignment, error) {
	query := `
		INSERT INTO fee_assignment (academic_year, term, fee_type, amount, level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		a.AcademicYear, a.Term, a.FeeType, a.Amount, a.Level, a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fee.Assignment{}, fee.ErrAssignmentExists
		}
		return fee.Assignment{}, errors.Wrap(err, "inserting fee assignment")
	}
	return a, nil
}

func (repo feeRepository) GetAssignmentByID(ctx context.Context, id int) (fee.Assignment, error) {
	var row assignmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM fee_assignment WHERE id = $1`, id); err != nil {
		return fee.Assignment{}, trapNoRowsErr(err, fee.ErrNotFound, "finding fee assignment by ID")
	}
	return row.assignment(), nil
}

func (repo feeRepository) QueryAssignments(ctx context.Context, academicYear, term, level string) ([]fee.Assignment, error) {
	query := `SELECT * FROM fee_assignment`
	var conds []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if academicYear != "" {
		conds = append(conds, `academic_year = `+arg(academicYear))
	}
	if term != "" {
		conds = append(conds, `term = `+arg(term))
	}
	if level != "" {
		conds = append(conds, `(level = `+arg(level)+` OR level = '`+fee.LevelAll+`')`)
	}

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY fee_type`

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying fee assignments")
	}
	assignments := make([]fee.Assignment, 0, len(rows))
	for _, row := range rows {
		assignments = append(assignments, row.assignment())
	}
	return assignments, nil
}

func (repo feeRepository) UpdateAssignment(ctx context.Context, a fee.Assignment) (fee.Assignment, error) {
	query := `
		UPDATE fee_assignment
		SET academic_year = $1, term = $2, fee_type = $3, amount = $4, level = $5, updated_at = $6
		WHERE id = $7
		RETURNING *`
	var row assignmentRow
	err := repo.db.GetContext(
		ctx, &row, query,
		a.AcademicYear, a.Term, a.FeeType, a.Amount, a.Level, a.UpdatedAt.UTC(), a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fee.Assignment{}, fee.ErrAssignmentExists
		}
		return fee.Assignment{}, trapNoRowsErr(err, fee.ErrNotFound, "updating fee assignment")
	}
	return row.assignment(), nil
}

func (repo feeRepository) DeleteAssignment(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM fee_assignment WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting fee assignment")
	}
	return nil
}

func (repo feeRepository) CreatePayment(ctx context.Context, p fee.Payment) (fee.Payment, error) {
	query := `
		INSERT INTO payment (student_id, reference, amount, method, fee_type, term, academic_year, paid_at, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, query,
		p.StudentID, p.Reference, p.Amount, p.Method, p.FeeType, p.Term, p.AcademicYear,
		p.PaidAt.UTC(), p.CreatedAt.UTC(),
	).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fee.Payment{}, fee.ErrDuplicateReference
		}
		return fee.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo feeRepository) GetPaymentByID(ctx context.Context, id int) (fee.Payment, error) {
	var row paymentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM payment WHERE id = $1`, id); err != nil {
		return fee.Payment{}, trapNoRowsErr(err, fee.ErrNotFound, "finding payment by ID")
	}
	return row.payment(), nil
}

func (repo feeRepository) FilterPayments(ctx context.Context, filter fee.QueryFilter) ([]fee.Payment, error) {
	query := `SELECT * FROM payment`
	var conds []string
	var args []interface{}
	arg := func(val interface{}) string {
		args = append(args, val)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.StudentID != 0 {
		conds = append(conds, `student_id = `+arg(filter.StudentID))
	}
	if filter.AcademicYear != "" {
		conds = append(conds, `academic_year = `+arg(filter.AcademicYear))
	}
	if filter.Term != "" {
		conds = append(conds, `term = `+arg(filter.Term))
	}
	if filter.FeeType != "" {
		conds = append(conds, `fee_type = `+arg(filter.FeeType))
	}
	if filter.Method != "" {
		conds = append(conds, `method = `+arg(filter.Method))
	}
	if !filter.PaidFrom.IsZero() {
		conds = append(conds, `paid_at >= `+arg(filter.PaidFrom.UTC()))
	}
	if !filter.PaidTo.IsZero() {
		conds = append(conds, `paid_at <= `+arg(filter.PaidTo.UTC()))
	}

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY paid_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ` + arg(filter.Limit)
	}

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]fee.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.payment())
	}
	return payments, nil
}
