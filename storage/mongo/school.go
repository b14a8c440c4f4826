package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.ID = newID()
	if _, err := repo.db.schools().InsertOne(ctx, sch); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	var sch school.School
	if err := repo.db.schools().FindOne(ctx, bson.M{"_id": id}).Decode(&sch); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "fetching school")
	}
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := repo.db.schools().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	schools := make([]school.School, 0)
	if err = cur.All(ctx, &schools); err != nil {
		return nil, errors.Wrap(err, "decoding schools")
	}
	return schools, nil
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	sch.UpdatedAt = time.Now().UTC()
	res, err := repo.db.schools().ReplaceOne(ctx, bson.M{"_id": sch.ID}, sch)
	if err != nil {
		return school.School{}, errors.Wrap(err, "updating school")
	}
	if res.MatchedCount == 0 {
		return school.School{}, school.ErrNotFound
	}
	return sch, nil
}

func (repo *schoolRepository) CreateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	cls.ID = newID()
	if _, err := repo.db.classes().InsertOne(ctx, cls); err != nil {
		return school.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *schoolRepository) GetClassByID(ctx context.Context, id string) (school.Class, error) {
	var cls school.Class
	if err := repo.db.classes().FindOne(ctx, bson.M{"_id": id}).Decode(&cls); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, errors.Wrap(err, "fetching class")
	}
	return cls, nil
}

func (repo *schoolRepository) QueryClasses(ctx context.Context, schoolID string) ([]school.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "section", Value: 1}})
	cur, err := repo.db.classes().Find(ctx, bson.M{"schoolId": schoolID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	classes := make([]school.Class, 0)
	if err = cur.All(ctx, &classes); err != nil {
		return nil, errors.Wrap(err, "decoding classes")
	}
	return classes, nil
}

func (repo *schoolRepository) UpdateClass(ctx context.Context, cls school.Class) (school.Class, error) {
	cls.UpdatedAt = time.Now().UTC()
	res, err := repo.db.classes().ReplaceOne(ctx, bson.M{"_id": cls.ID}, cls)
	if err != nil {
		return school.Class{}, errors.Wrap(err, "updating class")
	}
	if res.MatchedCount == 0 {
		return school.Class{}, school.ErrClassNotFound
	}
	return cls, nil
}

func (repo *schoolRepository) DeleteClass(ctx context.Context, id string) error {
	res, err := repo.db.classes().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if res.DeletedCount == 0 {
		return school.ErrClassNotFound
	}
	return nil
}

func (repo *schoolRepository) CountClassesReferencingSubject(ctx context.Context, schoolID, subjectID string) (int64, error) {
	n, err := repo.db.classes().CountDocuments(ctx, bson.M{"schoolId": schoolID, "subjectIds": subjectID})
	return n, errors.Wrap(err, "counting classes referencing subject")
}
