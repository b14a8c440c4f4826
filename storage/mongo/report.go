package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func keyFilter(key report.Key) bson.M {
	return bson.M{
		"studentId":    key.StudentID,
		"schoolId":     key.SchoolID,
		"academicYear": key.AcademicYear,
		"templateKey":  key.TemplateKey,
		"term":         key.Term,
	}
}

// UpsertReportCard is a single findAndModify on the natural key: mutable
// fields are replaced wholesale, identity and createdAt only ever set on
// insert. Concurrent saves of the same key serialize on the unique index.
func (repo *reportRepository) UpsertReportCard(ctx context.Context, rc report.ReportCard) (report.ReportCard, error) {
	now := time.Now().UTC()
	key := report.Key{
		StudentID:    rc.StudentID,
		SchoolID:     rc.SchoolID,
		AcademicYear: rc.AcademicYear,
		TemplateKey:  rc.TemplateKey,
		Term:         rc.Term,
	}
	update := bson.M{
		"$set": bson.M{
			"className":  rc.ClassName,
			"formative":  rc.Formative,
			"summative":  rc.Summative,
			"attendance": rc.Attendance,
			"finalGrade": rc.FinalGrade,
			"remarks":    rc.Remarks,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"_id":          newID(),
			"studentId":    rc.StudentID,
			"schoolId":     rc.SchoolID,
			"academicYear": rc.AcademicYear,
			"templateKey":  rc.TemplateKey,
			"term":         rc.Term,
			"createdAt":    now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved report.ReportCard
	if err := repo.db.reports().FindOneAndUpdate(ctx, keyFilter(key), update, opts).Decode(&saved); err != nil {
		return report.ReportCard{}, errors.Wrap(err, "upserting report card")
	}
	return saved, nil
}

func (repo *reportRepository) GetReportCard(ctx context.Context, key report.Key) (report.ReportCard, error) {
	var rc report.ReportCard
	if err := repo.db.reports().FindOne(ctx, keyFilter(key)).Decode(&rc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return report.ReportCard{}, report.ErrNotFound
		}
		return report.ReportCard{}, errors.Wrap(err, "fetching report card")
	}
	return rc, nil
}

func (repo *reportRepository) QueryStudentReportCards(ctx context.Context, studentID, academicYear string) ([]report.ReportCard, error) {
	filter := bson.M{"studentId": studentID, "academicYear": academicYear}
	opts := options.Find().SetSort(bson.D{{Key: "templateKey", Value: 1}, {Key: "term", Value: 1}})

	cur, err := repo.db.reports().Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying report cards")
	}
	cards := make([]report.ReportCard, 0)
	if err = cur.All(ctx, &cards); err != nil {
		return nil, errors.Wrap(err, "decoding report cards")
	}
	return cards, nil
}
