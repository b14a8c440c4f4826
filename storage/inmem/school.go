package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/campusflow/campusflow/core/school"
)

type schoolRepository struct {
	schools *schoolTable
	classes *classTable
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{schools: db.school, classes: db.class}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.schools.Lock()
	defer repo.schools.Unlock()

	sch.ID = newID()
	repo.schools.table[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	repo.schools.RLock()
	defer repo.schools.RUnlock()

	if sch, ok := repo.schools.table[id]; ok {
		return *sch, nil
	}
	return school.School{}, school.ErrNotFound
}

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	repo.schools.RLock()
	defer repo.schools.RUnlock()

	schools := make([]school.School, 0, len(repo.schools.table))
	for _, sch := range repo.schools.table {
		schools = append(schools, *sch)
	}
	sort.Slice(schools, func(i, j int) bool { return schools[i].ID < schools[j].ID })
	return schools, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	repo.schools.Lock()
	defer repo.schools.Unlock()

	if _, ok := repo.schools.table[sch.ID]; !ok {
		return school.School{}, school.ErrNotFound
	}
	sch.UpdatedAt = time.Now().UTC()
	repo.schools.table[sch.ID] = &sch
	return sch, nil
}

func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	cls.ID = newID()
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id string) (school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	if cls, ok := repo.classes.table[id]; ok {
		return *cls, nil
	}
	return school.Class{}, school.ErrClassNotFound
}

func (repo *schoolRepository) QueryClasses(ctx context.Context, schoolID string) ([]school.Class, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	classes := make([]school.Class, 0)
	for _, cls := range repo.classes.table {
		if cls.SchoolID == schoolID {
			classes = append(classes, *cls)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

func (repo *schoolRepository) UpdateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	if _, ok := repo.classes.table[cls.ID]; !ok {
		return school.Class{}, school.ErrClassNotFound
	}
	cls.UpdatedAt = time.Now().UTC()
	repo.classes.table[cls.ID] = &cls
	return cls, nil
}

func (repo *schoolRepository) DeleteClass(ctx context.Context, id string) error {
	repo.classes.Lock()
	defer repo.classes.Unlock()

	if _, ok := repo.classes.table[id]; !ok {
		return school.ErrClassNotFound
	}
	delete(repo.classes.table, id)
	return nil
}

func (repo *schoolRepository) CountClassesReferencingSubject(ctx context.Context, schoolID, subjectID string) (int64, error) {
	repo.classes.RLock()
	defer repo.classes.RUnlock()

	var count int64
	for _, cls := range repo.classes.table {
		if cls.SchoolID != schoolID {
			continue
		}
		for _, sid := range cls.SubjectIDs {
			if sid == subjectID {
				count++
				break
			}
		}
	}
	return count, nil
}
