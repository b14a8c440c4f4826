package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/campusflow/campusflow/core/report"
)

type reportRepository struct {
	db *reportTable
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db.report}
}

func matchesKey(rc *report.ReportCard, key report.Key) bool {
	return rc.StudentID == key.StudentID && rc.SchoolID == key.SchoolID &&
		rc.AcademicYear == key.AcademicYear && rc.TemplateKey == key.TemplateKey &&
		rc.Term == key.Term
}

func (repo *reportRepository) UpsertReportCard(ctx context.Context, rc report.ReportCard) (report.ReportCard, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := report.Key{
		StudentID:    rc.StudentID,
		SchoolID:     rc.SchoolID,
		AcademicYear: rc.AcademicYear,
		TemplateKey:  rc.TemplateKey,
		Term:         rc.Term,
	}
	now := time.Now().UTC()
	for _, existing := range repo.db.table {
		if matchesKey(existing, key) {
			rc.ID = existing.ID
			rc.CreatedAt = existing.CreatedAt
			rc.UpdatedAt = now
			repo.db.table[rc.ID] = &rc
			return rc, nil
		}
	}
	rc.ID = newID()
	rc.CreatedAt = now
	rc.UpdatedAt = now
	repo.db.table[rc.ID] = &rc
	return rc, nil
}

func (repo *reportRepository) GetReportCard(ctx context.Context, key report.Key) (report.ReportCard, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rc := range repo.db.table {
		if matchesKey(rc, key) {
			return *rc, nil
		}
	}
	return report.ReportCard{}, report.ErrNotFound
}

func (repo *reportRepository) QueryStudentReportCards(ctx context.Context, studentID, academicYear string) ([]report.ReportCard, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matched := make([]report.ReportCard, 0)
	for _, rc := range repo.db.table {
		if rc.StudentID == studentID && rc.AcademicYear == academicYear {
			matched = append(matched, *rc)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].TemplateKey != matched[j].TemplateKey {
			return matched[i].TemplateKey < matched[j].TemplateKey
		}
		return matched[i].Term < matched[j].Term
	})
	return matched, nil
}
