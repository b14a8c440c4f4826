package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core/assessment"
)

type assessmentRepository struct {
	db *DB
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *DB) assessment.Repository {
	return &assessmentRepository{db: db}
}

func schemeFilter(key assessment.SchemeKey) bson.M {
	return bson.M{
		"schoolId":     key.SchoolID,
		"className":    key.ClassName,
		"academicYear": key.AcademicYear,
	}
}

func (repo *assessmentRepository) GetScheme(ctx context.Context, key assessment.SchemeKey) (assessment.Scheme, error) {
	var s assessment.Scheme
	if err := repo.db.schemes().FindOne(ctx, schemeFilter(key)).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return assessment.Scheme{}, assessment.ErrNotFound
		}
		return assessment.Scheme{}, errors.Wrap(err, "fetching assessment scheme")
	}
	return s, nil
}

// CreateScheme relies on the unique natural-key index; the losing writer
// of a concurrent first read gets ErrSchemeExists and re-fetches.
func (repo *assessmentRepository) CreateScheme(ctx context.Context, s assessment.Scheme) (assessment.Scheme, error) {
	s.ID = newID()
	if _, err := repo.db.schemes().InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return assessment.Scheme{}, assessment.ErrSchemeExists
		}
		return assessment.Scheme{}, errors.Wrap(err, "inserting assessment scheme")
	}
	return s, nil
}

func (repo *assessmentRepository) UpdateScheme(ctx context.Context, s assessment.Scheme) (assessment.Scheme, error) {
	s.UpdatedAt = time.Now().UTC()
	res, err := repo.db.schemes().ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return assessment.Scheme{}, errors.Wrap(err, "updating assessment scheme")
	}
	if res.MatchedCount == 0 {
		return assessment.Scheme{}, assessment.ErrNotFound
	}
	return s, nil
}

func (repo *assessmentRepository) UpsertMarks(ctx context.Context, m assessment.StudentMarks) (assessment.StudentMarks, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"studentId":    m.StudentID,
		"schoolId":     m.SchoolID,
		"className":    m.ClassName,
		"academicYear": m.AcademicYear,
		"group":        m.Group,
	}
	update := bson.M{
		"$set": bson.M{
			"scores":    m.Scores,
			"enteredBy": m.EnteredBy,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":          newID(),
			"studentId":    m.StudentID,
			"schoolId":     m.SchoolID,
			"className":    m.ClassName,
			"academicYear": m.AcademicYear,
			"group":        m.Group,
			"createdAt":    now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved assessment.StudentMarks
	if err := repo.db.marks().FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return assessment.StudentMarks{}, errors.Wrap(err, "upserting student marks")
	}
	return saved, nil
}

func (repo *assessmentRepository) QueryMarks(ctx context.Context, studentID, academicYear string) ([]assessment.StudentMarks, error) {
	filter := bson.M{"studentId": studentID, "academicYear": academicYear}
	opts := options.Find().SetSort(bson.D{{Key: "group", Value: 1}})

	cur, err := repo.db.marks().Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying student marks")
	}
	marks := make([]assessment.StudentMarks, 0)
	if err = cur.All(ctx, &marks); err != nil {
		return nil, errors.Wrap(err, "decoding student marks")
	}
	return marks, nil
}
