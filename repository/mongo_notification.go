package repository

import (
	"context"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoNotificationRepo struct {
	coll *mongo.Collection
}

func (r *mongoNotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	result, err := r.coll.InsertOne(ctx, notification)
	if err != nil {
		return err
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoNotificationRepo) List(ctx context.Context, recipientID string, unreadOnly bool) ([]models.Notification, error) {
	query := bson.M{"recipientId": recipientID}
	if unreadOnly {
		query["read"] = false
	}

	findOptions := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(200)
	cursor, err := r.coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *mongoNotificationRepo) MarkRead(ctx context.Context, id string, recipientID string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": objID, "recipientId": recipientID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
