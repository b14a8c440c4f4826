// Package mongodb implements the repositories on MongoDB. Documents carry
// ObjectID hex strings as _id so ids stay plain strings across layers, and
// natural-key uniqueness rides on the unique indexes declared here.
package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/campusflow/campusflow/core"
)

const connectTimeout = 10 * time.Second

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the configured MongoDB deployment and pings it.
func Open(conf *core.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return &DB{client: client, db: client.Database(conf.Database.Name)}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Ping checks connectivity for readiness probes.
func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) users() *mongo.Collection       { return db.db.Collection("users") }
func (db *DB) schools() *mongo.Collection     { return db.db.Collection("schools") }
func (db *DB) classes() *mongo.Collection     { return db.db.Collection("classes") }
func (db *DB) subjects() *mongo.Collection    { return db.db.Collection("subjects") }
func (db *DB) payments() *mongo.Collection    { return db.db.Collection("fee_payments") }
func (db *DB) concessions() *mongo.Collection { return db.db.Collection("fee_concessions") }
func (db *DB) attendance() *mongo.Collection  { return db.db.Collection("attendance_records") }
func (db *DB) schemes() *mongo.Collection     { return db.db.Collection("assessment_schemes") }
func (db *DB) marks() *mongo.Collection       { return db.db.Collection("student_marks") }
func (db *DB) reports() *mongo.Collection     { return db.db.Collection("report_cards") }

func newID() string {
	return primitive.NewObjectID().Hex()
}

// primitiveRegex builds a case-insensitive literal substring matcher.
func primitiveRegex(search string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
}

// caseInsensitive is the collation backing per-school subject name
// uniqueness. Lookups must pass the same collation to hit the index.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// EnsureIndexes creates the unique indexes the repositories rely on for
// atomic find-or-create and upsert semantics. Safe to run repeatedly.
func EnsureIndexes(ctx context.Context, db *DB) error {
	type spec struct {
		coll *mongo.Collection
		m    mongo.IndexModel
	}
	asc := func(fields ...string) bson.D {
		d := make(bson.D, 0, len(fields))
		for _, f := range fields {
			d = append(d, bson.E{Key: f, Value: 1})
		}
		return d
	}

	specs := []spec{
		{db.users(), mongo.IndexModel{
			Keys: asc("email"),
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"email": bson.M{"$exists": true, "$gt": ""}}),
		}},
		{db.users(), mongo.IndexModel{
			Keys: asc("schoolId", "admissionId"),
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"role": "student", "admissionId": bson.M{"$exists": true, "$gt": ""}}),
		}},
		{db.subjects(), mongo.IndexModel{
			Keys:    asc("schoolId", "name"),
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		}},
		{db.classes(), mongo.IndexModel{Keys: asc("schoolId")}},
		{db.payments(), mongo.IndexModel{Keys: asc("studentId", "academicYear")}},
		{db.concessions(), mongo.IndexModel{Keys: asc("studentId", "academicYear")}},
		{db.attendance(), mongo.IndexModel{
			Keys:    asc("studentId", "schoolId", "month", "year"),
			Options: options.Index().SetUnique(true),
		}},
		{db.schemes(), mongo.IndexModel{
			Keys:    asc("schoolId", "className", "academicYear"),
			Options: options.Index().SetUnique(true),
		}},
		{db.marks(), mongo.IndexModel{
			Keys:    asc("studentId", "schoolId", "className", "academicYear", "group"),
			Options: options.Index().SetUnique(true),
		}},
		{db.reports(), mongo.IndexModel{
			Keys:    asc("studentId", "schoolId", "academicYear", "templateKey", "term"),
			Options: options.Index().SetUnique(true),
		}},
	}

	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.m); err != nil {
			return errors.Wrapf(err, "creating index on %s", s.coll.Name())
		}
	}
	return nil
}
