package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core/fees"
)

type feesRepository struct {
	db *DB
}

var _ fees.Repository = (*feesRepository)(nil) // interface compliance check

func NewFeesRepository(db *DB) fees.Repository {
	return &feesRepository{db: db}
}

func (repo *feesRepository) CreatePayment(ctx context.Context, p fees.Payment) (fees.Payment, error) {
	p.ID = newID()
	if _, err := repo.db.payments().InsertOne(ctx, p); err != nil {
		return fees.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *feesRepository) GetPaymentByID(ctx context.Context, id string) (fees.Payment, error) {
	var p fees.Payment
	if err := repo.db.payments().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fees.Payment{}, fees.ErrNotFound
		}
		return fees.Payment{}, errors.Wrap(err, "fetching payment")
	}
	return p, nil
}

func (repo *feesRepository) FilterPayments(ctx context.Context, filter fees.QueryFilter) ([]fees.Payment, error) {
	query := bson.M{}
	if filter.StudentID != "" {
		query["studentId"] = filter.StudentID
	}
	if filter.SchoolID != "" {
		query["schoolId"] = filter.SchoolID
	}
	if filter.ClassName != "" {
		query["className"] = filter.ClassName
	}
	if filter.AcademicYear != "" {
		query["academicYear"] = filter.AcademicYear
	}

	opts := options.Find().SetSort(bson.D{{Key: "paymentDate", Value: 1}})
	cur, err := repo.db.payments().Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}
	payments := make([]fees.Payment, 0)
	if err = cur.All(ctx, &payments); err != nil {
		return nil, errors.Wrap(err, "decoding payments")
	}
	return payments, nil
}

func (repo *feesRepository) UpdatePayment(ctx context.Context, p fees.Payment) (fees.Payment, error) {
	p.UpdatedAt = time.Now().UTC()
	res, err := repo.db.payments().ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fees.Payment{}, errors.Wrap(err, "updating payment")
	}
	if res.MatchedCount == 0 {
		return fees.Payment{}, fees.ErrNotFound
	}
	return p, nil
}

func (repo *feesRepository) QueryConcessions(ctx context.Context, studentID, academicYear string) ([]fees.Concession, error) {
	filter := bson.M{"studentId": studentID, "academicYear": academicYear}
	cur, err := repo.db.concessions().Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "querying concessions")
	}
	concessions := make([]fees.Concession, 0)
	if err = cur.All(ctx, &concessions); err != nil {
		return nil, errors.Wrap(err, "decoding concessions")
	}
	return concessions, nil
}
