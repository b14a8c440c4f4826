package inmem

import (
	"context"
	"time"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/attendance"
)

type attendanceRepository struct {
	db *attendanceTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db.attendance}
}

func (repo *attendanceRepository) UpsertMonthlyRecord(ctx context.Context, rec attendance.MonthlyRecord) (attendance.MonthlyRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	for _, existing := range repo.db.table {
		if existing.StudentID == rec.StudentID && existing.SchoolID == rec.SchoolID &&
			existing.Month == rec.Month && existing.Year == rec.Year {
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
			rec.UpdatedAt = now
			repo.db.table[rec.ID] = &rec
			return rec, nil
		}
	}
	rec.ID = newID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) QueryStudentMonths(ctx context.Context, studentID string, slots []core.MonthSlot) ([]attendance.MonthlyRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matched := make([]attendance.MonthlyRecord, 0, len(slots))
	for _, slot := range slots {
		for _, rec := range repo.db.table {
			if rec.StudentID == studentID && rec.Month == slot.Month && rec.Year == slot.Year {
				matched = append(matched, *rec)
				break
			}
		}
	}
	return matched, nil
}
