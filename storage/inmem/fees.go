package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/campusflow/campusflow/core/fees"
)

type feesRepository struct {
	payments    *paymentTable
	concessions *concessionTable
}

var _ fees.Repository = (*feesRepository)(nil) // interface compliance check

func NewFeesRepository(db *DB) fees.Repository {
	return &feesRepository{payments: db.payment, concessions: db.concession}
}

func (repo *feesRepository) CreatePayment(ctx context.Context, p fees.Payment) (fees.Payment, error) {
	repo.payments.Lock()
	defer repo.payments.Unlock()

	p.ID = newID()
	repo.payments.table[p.ID] = &p
	return p, nil
}

func (repo *feesRepository) GetPaymentByID(ctx context.Context, id string) (fees.Payment, error) {
	repo.payments.RLock()
	defer repo.payments.RUnlock()

	if p, ok := repo.payments.table[id]; ok {
		return *p, nil
	}
	return fees.Payment{}, fees.ErrNotFound
}

func (repo *feesRepository) FilterPayments(ctx context.Context, filter fees.QueryFilter) ([]fees.Payment, error) {
	repo.payments.RLock()
	defer repo.payments.RUnlock()

	matched := make([]fees.Payment, 0)
	for _, p := range repo.payments.table {
		if filter.StudentID != "" && p.StudentID != filter.StudentID {
			continue
		}
		if filter.SchoolID != "" && p.SchoolID != filter.SchoolID {
			continue
		}
		if filter.ClassName != "" && p.ClassName != filter.ClassName {
			continue
		}
		if filter.AcademicYear != "" && p.AcademicYear != filter.AcademicYear {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].PaymentDate.Before(matched[j].PaymentDate) })
	return matched, nil
}

func (repo *feesRepository) UpdatePayment(ctx context.Context, p fees.Payment) (fees.Payment, error) {
	repo.payments.Lock()
	defer repo.payments.Unlock()

	if _, ok := repo.payments.table[p.ID]; !ok {
		return fees.Payment{}, fees.ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	repo.payments.table[p.ID] = &p
	return p, nil
}

func (repo *feesRepository) QueryConcessions(ctx context.Context, studentID, academicYear string) ([]fees.Concession, error) {
	repo.concessions.RLock()
	defer repo.concessions.RUnlock()

	matched := make([]fees.Concession, 0)
	for _, c := range repo.concessions.table {
		if c.StudentID == studentID && c.AcademicYear == academicYear {
			matched = append(matched, *c)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}
