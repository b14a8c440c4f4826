package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusflow/campusflow/core/user"
)

// ResetData deletes every document except users with role superadmin,
// then re-creates the indexes. Destructive; admin CLI only.
func (db *DB) ResetData(ctx context.Context) error {
	colls := []*mongo.Collection{
		db.schools(), db.classes(), db.subjects(),
		db.payments(), db.concessions(), db.attendance(),
		db.schemes(), db.marks(), db.reports(),
	}
	for _, c := range colls {
		if _, err := c.DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrapf(err, "clearing %s", c.Name())
		}
	}
	if _, err := db.users().DeleteMany(ctx, bson.M{"role": bson.M{"$ne": user.RoleSuperAdmin}}); err != nil {
		return errors.Wrap(err, "clearing users")
	}
	return EnsureIndexes(ctx, db)
}
