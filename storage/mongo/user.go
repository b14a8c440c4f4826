package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusflow/campusflow/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func excludedIDs(excluded []user.User) bson.A {
	ids := make(bson.A, 0, len(excluded))
	for _, usr := range excluded {
		ids = append(ids, usr.ID)
	}
	return ids
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...user.User) error {
	if email == "" {
		return nil
	}
	filter := bson.M{"email": email}
	if len(excluded) > 0 {
		filter["_id"] = bson.M{"$nin": excludedIDs(excluded)}
	}
	n, err := repo.db.users().CountDocuments(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "counting users by email")
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CheckAdmissionIDUniqueness(ctx context.Context, schoolID, admissionID string, excluded ...user.User) error {
	if admissionID == "" {
		return nil
	}
	filter := bson.M{"schoolId": schoolID, "admissionId": admissionID}
	if len(excluded) > 0 {
		filter["_id"] = bson.M{"$nin": excludedIDs(excluded)}
	}
	n, err := repo.db.users().CountDocuments(ctx, filter)
	if err != nil {
		return errors.Wrap(err, "counting users by admission id")
	}
	if n > 0 {
		return user.ErrAdmissionIDExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	if _, err := repo.db.users().InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.db.users().FindOne(ctx, filter).Decode(&usr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "fetching user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"email": email})
}

func (repo *userRepository) GetStudentByAdmissionID(ctx context.Context, admissionID string) (user.User, error) {
	return repo.getUser(ctx, bson.M{"role": user.RoleStudent, "admissionId": admissionID})
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := bson.M{}
	if filter.SchoolID != "" {
		query["schoolId"] = filter.SchoolID
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.ClassID != "" {
		query["classId"] = filter.ClassID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := primitiveRegex(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"admissionId": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := repo.db.users().Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0)
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.UpdatedAt = time.Now().UTC()
	res, err := repo.db.users().ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) SetUserLastLogin(ctx context.Context, id string, t time.Time) (user.User, error) {
	var usr user.User
	err := repo.db.users().FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"lastLogin": t}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&usr)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	idList := make(bson.A, 0, len(ids))
	for _, id := range ids {
		idList = append(idList, id)
	}
	_, err := repo.db.users().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": idList}})
	return errors.Wrap(err, "deleting users")
}
