package wallet

import (
	"context"

	"github.com/osei222/schoolfees/core"
)

// casAttempts bounds refetch-and-retry on optimistic-concurrency conflicts.
const casAttempts = 3

type (
	Repository interface {
		GetAccount(ctx context.Context) (Account, error)
		// Apply persists the account state and appends the transaction as one
		// atomic unit, guarded by compare-and-set on next.Version-1. A lost
		// race returns ErrConflict and persists nothing.
		Apply(ctx context.Context, next Account, txn Transaction) (Account, Transaction, error)
		FilterTransactions(ctx context.Context, limit int) ([]Transaction, error)
	}

	Service struct {
		repo   Repository
		policy Policy
	}
)

func NewService(repo Repository, policy Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

func (svc *Service) Policy() Policy { return svc.policy }

func (svc *Service) Account(ctx context.Context) (Account, error) {
	return svc.repo.GetAccount(ctx)
}

func (svc *Service) Transactions(ctx context.Context, limit int) ([]Transaction, error) {
	return svc.repo.FilterTransactions(ctx, limit)
}

func (svc *Service) TopUp(ctx context.Context, nt NewTopUp) (Account, Transaction, error) {
	acct, txn, err := svc.execute(ctx, TopUp{Amount: nt.Amount, Method: nt.Method, Reference: core.CleanString(nt.Reference)})
	if err == ErrBelowMinimum {
		return acct, txn, core.NewValidationError(err, core.FieldError{
			Field: "amount",
			Error: "minimum top-up is " + core.FormatAmount(svc.policy.MinTopUp),
		})
	}
	return acct, txn, err
}

func (svc *Service) PurchaseSMS(ctx context.Context, np NewPurchase) (Account, Transaction, error) {
	acct, txn, err := svc.execute(ctx, PurchaseSMS{Units: np.Units})
	switch err {
	case ErrBelowMinimum:
		return acct, txn, core.NewValidationError(err, core.FieldError{
			Field: "units",
			Error: ErrBelowMinimum.Error(),
		})
	case ErrInsufficientFunds:
		return acct, txn, core.NewValidationError(err, core.FieldError{
			Field: "units",
			Error: ErrInsufficientFunds.Error(),
		})
	}
	return acct, txn, err
}

// DebitSMS consumes units when a notification goes out. Callers treat failure
// as "SMS could not be sent", never as grounds to unwind their own work.
func (svc *Service) DebitSMS(ctx context.Context, count int, reason string) (Account, Transaction, error) {
	return svc.execute(ctx, DebitSMS{Count: count, Reason: reason})
}

func (svc *Service) execute(ctx context.Context, op Operation) (Account, Transaction, error) {
	var lastErr error
	for attempt := 0; attempt < casAttempts; attempt++ {
		acct, err := svc.repo.GetAccount(ctx)
		if err != nil {
			return Account{}, Transaction{}, err
		}
		next, txn, err := Apply(svc.policy, acct, op)
		if err != nil {
			return acct, Transaction{}, err
		}
		next, txn, err = svc.repo.Apply(ctx, next, txn)
		if err == ErrConflict {
			lastErr = err
			continue
		}
		return next, txn, err
	}
	return Account{}, Transaction{}, lastErr
}
