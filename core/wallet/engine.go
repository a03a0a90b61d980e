package wallet

import (
	"fmt"
	"time"

	"github.com/osei222/schoolfees/core"
	"github.com/shopspring/decimal"
)

// The ledger engine: each operation is validate → apply → record in one step.
// On error the input account is returned untouched and no transaction exists;
// there is no intermediate state to observe.

type Operation interface {
	apply(p Policy, acct Account) (Account, Transaction, error)
}

type TopUp struct {
	Amount    decimal.Decimal
	Method    string
	Reference string
}

type PurchaseSMS struct {
	Units     int
	Reference string
}

type DebitSMS struct {
	Count  int
	Reason string
}

// Apply validates op against the account under policy p and returns the next
// account state plus the ledger row recording the transition. Pure: callers
// own persistence and its atomicity.
func Apply(p Policy, acct Account, op Operation) (Account, Transaction, error) {
	return op.apply(p, acct)
}

func (op TopUp) apply(p Policy, acct Account) (Account, Transaction, error) {
	if op.Amount.LessThan(p.MinTopUp) {
		return acct, Transaction{}, ErrBelowMinimum
	}

	next := acct
	next.Balance = acct.Balance.Add(op.Amount)
	next.Version = acct.Version + 1
	next.UpdatedAt = time.Now().UTC()

	reference := op.Reference
	if reference == "" {
		reference = core.ShortRef("TOP")
	}
	txn := Transaction{
		Type:              TypeTopUp,
		AmountDelta:       op.Amount,
		ResultingBalance:  next.Balance,
		ResultingSMSUnits: next.SMSUnits,
		Method:            op.Method,
		Reference:         reference,
		Description:       fmt.Sprintf("Wallet top-up via %s", op.Method),
		CreatedAt:         next.UpdatedAt,
	}
	return next, txn, nil
}

func (op PurchaseSMS) apply(p Policy, acct Account) (Account, Transaction, error) {
	if op.Units < p.MinSMSPurchase {
		return acct, Transaction{}, ErrBelowMinimum
	}
	cost := p.PurchaseCost(op.Units)
	if cost.GreaterThan(acct.Balance) {
		return acct, Transaction{}, ErrInsufficientFunds
	}

	next := acct
	next.Balance = acct.Balance.Sub(cost)
	next.SMSUnits = acct.SMSUnits + op.Units
	next.Version = acct.Version + 1
	next.UpdatedAt = time.Now().UTC()

	reference := op.Reference
	if reference == "" {
		reference = core.ShortRef("SMS")
	}
	txn := Transaction{
		Type:              TypeSMSPurchase,
		AmountDelta:       cost.Neg(),
		SMSUnitsDelta:     op.Units,
		ResultingBalance:  next.Balance,
		ResultingSMSUnits: next.SMSUnits,
		Reference:         reference,
		Description:       fmt.Sprintf("Purchased %d SMS units", op.Units),
		CreatedAt:         next.UpdatedAt,
	}
	return next, txn, nil
}

func (op DebitSMS) apply(_ Policy, acct Account) (Account, Transaction, error) {
	if op.Count < 1 {
		return acct, Transaction{}, ErrInvalidUnits
	}
	if op.Count > acct.SMSUnits {
		return acct, Transaction{}, ErrInsufficientUnits
	}

	next := acct
	next.SMSUnits = acct.SMSUnits - op.Count
	next.Version = acct.Version + 1
	next.UpdatedAt = time.Now().UTC()

	description := op.Reason
	if description == "" {
		description = fmt.Sprintf("Used %d SMS units", op.Count)
	}
	txn := Transaction{
		Type:              TypeSMSUsage,
		SMSUnitsDelta:     -op.Count,
		ResultingBalance:  next.Balance,
		ResultingSMSUnits: next.SMSUnits,
		Reference:         core.ShortRef("USE"),
		Description:       description,
		CreatedAt:         next.UpdatedAt,
	}
	return next, txn, nil
}
