package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/campusflow/campusflow/core/assessment"
)

type assessmentRepository struct {
	schemes *schemeTable
	marks   *marksTable
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{schemes: db.scheme, marks: db.marks}
}

func (repo *assessmentRepository) findScheme(key assessment.SchemeKey) (*assessment.Scheme, bool) {
	for _, s := range repo.schemes.table {
		if s.SchoolID == key.SchoolID && s.ClassName == key.ClassName && s.AcademicYear == key.AcademicYear {
			return s, true
		}
	}
	return nil, false
}

func (repo *assessmentRepository) GetScheme(ctx context.Context, key assessment.SchemeKey) (assessment.Scheme, error) {
	repo.schemes.RLock()
	defer repo.schemes.RUnlock()

	if s, ok := repo.findScheme(key); ok {
		return *s, nil
	}
	return assessment.Scheme{}, assessment.ErrNotFound
}

func (repo *assessmentRepository) CreateScheme(ctx context.Context, s assessment.Scheme) (assessment.Scheme, error) {
	repo.schemes.Lock()
	defer repo.schemes.Unlock()

	key := assessment.SchemeKey{SchoolID: s.SchoolID, ClassName: s.ClassName, AcademicYear: s.AcademicYear}
	if _, ok := repo.findScheme(key); ok {
		return assessment.Scheme{}, assessment.ErrSchemeExists
	}
	s.ID = newID()
	repo.schemes.table[s.ID] = &s
	return s, nil
}

func (repo *assessmentRepository) UpdateScheme(ctx context.Context, s assessment.Scheme) (assessment.Scheme, error) {
	repo.schemes.Lock()
	defer repo.schemes.Unlock()

	if _, ok := repo.schemes.table[s.ID]; !ok {
		return assessment.Scheme{}, assessment.ErrNotFound
	}
	s.UpdatedAt = time.Now().UTC()
	repo.schemes.table[s.ID] = &s
	return s, nil
}

func (repo *assessmentRepository) UpsertMarks(ctx context.Context, m assessment.StudentMarks) (assessment.StudentMarks, error) {
	repo.marks.Lock()
	defer repo.marks.Unlock()

	now := time.Now().UTC()
	for _, existing := range repo.marks.table {
		if existing.StudentID == m.StudentID && existing.SchoolID == m.SchoolID &&
			existing.ClassName == m.ClassName && existing.AcademicYear == m.AcademicYear &&
			existing.Group == m.Group {
			m.ID = existing.ID
			m.CreatedAt = existing.CreatedAt
			m.UpdatedAt = now
			repo.marks.table[m.ID] = &m
			return m, nil
		}
	}
	m.ID = newID()
	m.CreatedAt = now
	m.UpdatedAt = now
	repo.marks.table[m.ID] = &m
	return m, nil
}

func (repo *assessmentRepository) QueryMarks(ctx context.Context, studentID, academicYear string) ([]assessment.StudentMarks, error) {
	repo.marks.RLock()
	defer repo.marks.RUnlock()

	matched := make([]assessment.StudentMarks, 0)
	for _, m := range repo.marks.table {
		if m.StudentID == studentID && m.AcademicYear == academicYear {
			matched = append(matched, *m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Group < matched[j].Group })
	return matched, nil
}
