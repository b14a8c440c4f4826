package inmem

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/campusflow/campusflow/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) nameTaken(schoolID, name string, excluded ...subject.Subject) bool {
	lower := strings.ToLower(name)
	for _, sub := range repo.db.table {
		if sub.SchoolID != schoolID || strings.ToLower(sub.Name) != lower {
			continue
		}
		ok := true
		for _, ex := range excluded {
			if ex.ID == sub.ID {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (repo *subjectRepository) CheckNameUniqueness(ctx context.Context, schoolID, name string, excluded ...subject.Subject) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if repo.nameTaken(schoolID, name, excluded...) {
		return subject.ErrNameExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.nameTaken(sub.SchoolID, sub.Name) {
		return subject.Subject{}, subject.ErrNameExists
	}
	sub.ID = newID()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return *sub, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, schoolID string) ([]subject.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]subject.Subject, 0)
	for _, sub := range repo.db.table {
		if sub.SchoolID == schoolID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool {
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
	return subjects, nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sub.ID]; !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	if repo.nameTaken(sub.SchoolID, sub.Name, sub) {
		return subject.Subject{}, subject.ErrNameExists
	}
	sub.UpdatedAt = time.Now().UTC()
	repo.db.table[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return subject.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
