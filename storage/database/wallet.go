package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/osei222/schoolfees/core/wallet"
)

type walletAccountRow struct {
	ID        int             `db:"id"`
	Balance   decimal.Decimal `db:"balance"`
	SMSUnits  int             `db:"sms_units"`
	Version   int             `db:"version"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r walletAccountRow) account() wallet.Account {
	return wallet.Account{
		Balance:   r.Balance,
		SMSUnits:  r.SMSUnits,
		Version:   r.Version,
		UpdatedAt: r.UpdatedAt,
	}
}

type walletTxnRow struct {
	ID                int             `db:"id"`
	Type              string          `db:"type"`
	AmountDelta       decimal.Decimal `db:"amount_delta"`
	SMSUnitsDelta     int             `db:"sms_units_delta"`
	ResultingBalance  decimal.Decimal `db:"resulting_balance"`
	ResultingSMSUnits int             `db:"resulting_sms_units"`
	Method            sql.NullString  `db:"method"`
	Reference         string          `db:"reference"`
	Description       string          `db:"description"`
	CreatedAt         time.Time       `db:"created_at"`
}

func (r walletTxnRow) transaction() wallet.Transaction {
	return wallet.Transaction{
		ID:                r.ID,
		Type:              wallet.Type(r.Type),
		AmountDelta:       r.AmountDelta,
		SMSUnitsDelta:     r.SMSUnitsDelta,
		ResultingBalance:  r.ResultingBalance,
		ResultingSMSUnits: r.ResultingSMSUnits,
		Method:            r.Method.String,
		Reference:         r.Reference,
		Description:       r.Description,
		CreatedAt:         r.CreatedAt,
	}
}

type walletRepository struct {
	db *sqlx.DB
}

var _ wallet.Repository = (*walletRepository)(nil) // interface compliance check

func NewWalletRepository(db *sqlx.DB) *walletRepository {
	return &walletRepository{db: db}
}

func (repo walletRepository) GetAccount(ctx context.Context) (wallet.Account, error) {
	var row walletAccountRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM wallet_account WHERE id = 1`); err != nil {
		return wallet.Account{}, errors.Wrap(err, "finding wallet account")
	}
	return row.account(), nil
}

// Apply persists the account state and appends the ledger row in one
// transaction. The UPDATE is fenced on the prior version; zero rows affected
// means another writer won and the whole unit rolls back with ErrConflict.
func (repo walletRepository) Apply(ctx context.Context, next wallet.Account, txn wallet.Transaction) (wallet.Account, wallet.Transaction, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return wallet.Account{}, wallet.Transaction{}, errors.Wrap(err, "beginning wallet transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`UPDATE wallet_account SET balance = $1, sms_units = $2, version = $3, updated_at = $4 WHERE id = 1 AND version = $5`,
		next.Balance, next.SMSUnits, next.Version, next.UpdatedAt.UTC(), next.Version-1,
	)
	if err != nil {
		return wallet.Account{}, wallet.Transaction{}, errors.Wrap(err, "updating wallet account")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return wallet.Account{}, wallet.Transaction{}, errors.Wrap(err, "updating wallet account")
	}
	if affected == 0 {
		return wallet.Account{}, wallet.Transaction{}, wallet.ErrConflict
	}

	query := `
		INSERT INTO wallet_transaction (type, amount_delta, sms_units_delta, resulting_balance,
		                                resulting_sms_units, method, reference, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		RETURNING id`
	err = tx.QueryRowContext(
		ctx, query,
		string(txn.Type), txn.AmountDelta, txn.SMSUnitsDelta, txn.ResultingBalance,
		txn.ResultingSMSUnits, txn.Method, txn.Reference, txn.Description, txn.CreatedAt.UTC(),
	).Scan(&txn.ID)
	if err != nil {
		return wallet.Account{}, wallet.Transaction{}, errors.Wrap(err, "inserting wallet transaction")
	}

	if err = tx.Commit(); err != nil {
		return wallet.Account{}, wallet.Transaction{}, errors.Wrap(err, "committing wallet transaction")
	}
	return next, txn, nil
}

func (repo walletRepository) FilterTransactions(ctx context.Context, limit int) ([]wallet.Transaction, error) {
	query := `SELECT * FROM wallet_transaction ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	var rows []walletTxnRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying wallet transactions")
	}
	txns := make([]wallet.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, row.transaction())
	}
	return txns, nil
}
