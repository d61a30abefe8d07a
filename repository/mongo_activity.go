package repository

import (
	"context"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoActivityRepo struct {
	coll *mongo.Collection
}

func (r *mongoActivityRepo) Insert(ctx context.Context, entry *models.ActivityLog) error {
	result, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return err
	}
	entry.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoActivityRepo) List(ctx context.Context, filter ActivityFilter) ([]models.ActivityLog, error) {
	query := bson.M{}
	if filter.TargetType != "" {
		query["targetType"] = filter.TargetType
	}
	if filter.TargetID != "" {
		query["targetId"] = filter.TargetID
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.ActivityLog
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
