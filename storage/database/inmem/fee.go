package inmemdb

import (
	"context"
	"sort"

	"github.com/osei222/schoolfees/core/fee"
)

var (
	assignmentPKCount int
	paymentPKCount    int
)

type feeRepository struct {
	db *feeTable
}

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db.fee}
}

func (repo *feeRepository) CreateAssignment(ctx context.Context, a fee.Assignment) (fee.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.assignments {
		if other.AcademicYear == a.AcademicYear && other.Term == a.Term &&
			other.FeeType == a.FeeType && other.Level == a.Level {
			return fee.Assignment{}, fee.ErrAssignmentExists
		}
	}

	assignmentPKCount++
	a.ID = assignmentPKCount
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *feeRepository) GetAssignmentByID(ctx context.Context, id int) (fee.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return fee.Assignment{}, fee.ErrNotFound
}

func (repo *feeRepository) QueryAssignments(ctx context.Context, academicYear, term, level string) ([]fee.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	assignments := make([]fee.Assignment, 0, len(repo.db.assignments))
	for _, a := range repo.db.assignments {
		if academicYear != "" && a.AcademicYear != academicYear {
			continue
		}
		if term != "" && a.Term != term {
			continue
		}
		if level != "" && !a.AppliesTo(level) {
			continue
		}
		assignments = append(assignments, *a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].FeeType < assignments[j].FeeType })
	return assignments, nil
}

func (repo *feeRepository) UpdateAssignment(ctx context.Context, a fee.Assignment) (fee.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.assignments[a.ID]
	if !ok {
		return fee.Assignment{}, fee.ErrNotFound
	}
	for _, other := range repo.db.assignments {
		if other.ID != a.ID && other.AcademicYear == a.AcademicYear && other.Term == a.Term &&
			other.FeeType == a.FeeType && other.Level == a.Level {
			return fee.Assignment{}, fee.ErrAssignmentExists
		}
	}
	a.CreatedAt = orig.CreatedAt
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *feeRepository) DeleteAssignment(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.assignments, id)
	return nil
}

func (repo *feeRepository) CreatePayment(ctx context.Context, p fee.Payment) (fee.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.payments {
		if other.Reference == p.Reference {
			return fee.Payment{}, fee.ErrDuplicateReference
		}
	}

	paymentPKCount++
	p.ID = paymentPKCount
	repo.db.payments[p.ID] = &p
	return p, nil
}

func (repo *feeRepository) GetPaymentByID(ctx context.Context, id int) (fee.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return *p, nil
	}
	return fee.Payment{}, fee.ErrNotFound
}

func (repo *feeRepository) FilterPayments(ctx context.Context, filter fee.QueryFilter) ([]fee.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	payments := make([]fee.Payment, 0, len(repo.db.payments))
	for _, p := range repo.db.payments {
		if matchPayment(*p, filter) {
			payments = append(payments, *p)
		}
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].PaidAt.After(payments[j].PaidAt) })
	if filter.Limit > 0 && len(payments) > filter.Limit {
		payments = payments[:filter.Limit]
	}
	return payments, nil
}

func matchPayment(p fee.Payment, filter fee.QueryFilter) bool {
	if filter.StudentID != 0 && p.StudentID != filter.StudentID {
		return false
	}
	if filter.AcademicYear != "" && p.AcademicYear != filter.AcademicYear {
		return false
	}
	if filter.Term != "" && p.Term != filter.Term {
		return false
	}
	if filter.FeeType != "" && p.FeeType != filter.FeeType {
		return false
	}
	if filter.Method != "" && p.Method != filter.Method {
		return false
	}
	if !filter.PaidFrom.IsZero() && p.PaidAt.Before(filter.PaidFrom) {
		return false
	}
	if !filter.PaidTo.IsZero() && p.PaidAt.After(filter.PaidTo) {
		return false
	}
	return true
}
