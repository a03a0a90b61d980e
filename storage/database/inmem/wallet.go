package inmemdb

import (
	"context"

	"github.com/osei222/schoolfees/core/wallet"
)

type walletRepository struct {
	db *walletTable
}

func NewWalletRepository(db *DB) wallet.Repository {
	return &walletRepository{db: db.wallet}
}

func (repo *walletRepository) GetAccount(ctx context.Context) (wallet.Account, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.account, nil
}

func (repo *walletRepository) Apply(ctx context.Context, next wallet.Account, txn wallet.Transaction) (wallet.Account, wallet.Transaction, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.db.account.Version != next.Version-1 {
		return wallet.Account{}, wallet.Transaction{}, wallet.ErrConflict
	}

	txn.ID = len(repo.db.transactions) + 1
	repo.db.account = next
	repo.db.transactions = append(repo.db.transactions, txn)
	return next, txn, nil
}

func (repo *walletRepository) FilterTransactions(ctx context.Context, limit int) ([]wallet.Transaction, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// newest first
	txns := make([]wallet.Transaction, 0, len(repo.db.transactions))
	for i := len(repo.db.transactions) - 1; i >= 0; i-- {
		txns = append(txns, repo.db.transactions[i])
		if limit > 0 && len(txns) == limit {
			break
		}
	}
	return txns, nil
}
