package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core"
	"github.com/campusflow/campusflow/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// UpsertMonthlyRecord replaces the record matching the natural key in a
// single findAndModify, riding on the unique index for concurrent writers.
func (repo *attendanceRepository) UpsertMonthlyRecord(ctx context.Context, rec attendance.MonthlyRecord) (attendance.MonthlyRecord, error) {
	now := time.Now().UTC()
	filter := bson.M{
		"studentId": rec.StudentID,
		"schoolId":  rec.SchoolID,
		"month":     rec.Month,
		"year":      rec.Year,
	}
	update := bson.M{
		"$set": bson.M{
			"className":        rec.ClassName,
			"daysPresent":      rec.DaysPresent,
			"totalWorkingDays": rec.TotalWorkingDays,
			"recordedBy":       rec.RecordedBy,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{
			"_id":       newID(),
			"studentId": rec.StudentID,
			"schoolId":  rec.SchoolID,
			"month":     rec.Month,
			"year":      rec.Year,
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved attendance.MonthlyRecord
	if err := repo.db.attendance().FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return attendance.MonthlyRecord{}, errors.Wrap(err, "upserting attendance record")
	}
	return saved, nil
}

func (repo *attendanceRepository) QueryStudentMonths(ctx context.Context, studentID string, slots []core.MonthSlot) ([]attendance.MonthlyRecord, error) {
	or := make(bson.A, 0, len(slots))
	for _, slot := range slots {
		or = append(or, bson.M{"month": slot.Month, "year": slot.Year})
	}
	filter := bson.M{"studentId": studentID, "$or": or}

	cur, err := repo.db.attendance().Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.MonthlyRecord, 0)
	if err = cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(err, "decoding attendance records")
	}
	return records, nil
}
