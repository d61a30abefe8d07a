package repository

import (
	"context"
	"time"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOutboxRepo struct {
	coll *mongo.Collection
}

func (r *mongoOutboxRepo) Insert(ctx context.Context, entry *models.OutboxEntry) error {
	result, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	entry.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoOutboxRepo) ListPending(ctx context.Context, maxAttempts int, limit int64) ([]models.OutboxEntry, error) {
	query := bson.M{
		"status":   bson.M{"$in": []string{models.OutboxStatusPending, models.OutboxStatusFailed}},
		"attempts": bson.M{"$lt": maxAttempts},
	}

	findOptions := options.Find().SetSort(bson.M{"createdAt": 1}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.OutboxEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *mongoOutboxRepo) MarkDispatched(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":       models.OutboxStatusDispatched,
			"dispatchedAt": at,
		}},
	)
	return err
}

func (r *mongoOutboxRepo) MarkFailed(ctx context.Context, id primitive.ObjectID, errMsg string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"status":    models.OutboxStatusFailed,
				"lastError": errMsg,
			},
			"$inc": bson.M{"attempts": 1},
		},
	)
	return err
}
