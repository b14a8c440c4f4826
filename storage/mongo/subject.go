package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckNameUniqueness(ctx context.Context, schoolID, name string, excluded ...subject.Subject) error {
	filter := bson.M{"schoolId": schoolID, "name": name}
	if len(excluded) > 0 {
		ids := make(bson.A, 0, len(excluded))
		for _, sub := range excluded {
			ids = append(ids, sub.ID)
		}
		filter["_id"] = bson.M{"$nin": ids}
	}
	opts := options.Count().SetCollation(caseInsensitive)
	n, err := repo.db.subjects().CountDocuments(ctx, filter, opts)
	if err != nil {
		return errors.Wrap(err, "counting subjects by name")
	}
	if n > 0 {
		return subject.ErrNameExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	sub.ID = newID()
	if _, err := repo.db.subjects().InsertOne(ctx, sub); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return subject.Subject{}, subject.ErrNameExists
		}
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id string) (subject.Subject, error) {
	var sub subject.Subject
	if err := repo.db.subjects().FindOne(ctx, bson.M{"_id": id}).Decode(&sub); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, errors.Wrap(err, "fetching subject")
	}
	return sub, nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, schoolID string) ([]subject.Subject, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetCollation(caseInsensitive)
	cur, err := repo.db.subjects().Find(ctx, bson.M{"schoolId": schoolID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0)
	if err = cur.All(ctx, &subjects); err != nil {
		return nil, errors.Wrap(err, "decoding subjects")
	}
	return subjects, nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	sub.UpdatedAt = time.Now().UTC()
	res, err := repo.db.subjects().ReplaceOne(ctx, bson.M{"_id": sub.ID}, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return subject.Subject{}, subject.ErrNameExists
		}
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	if res.MatchedCount == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return sub, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	res, err := repo.db.subjects().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if res.DeletedCount == 0 {
		return subject.ErrNotFound
	}
	return nil
}
