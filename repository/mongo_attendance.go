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

type mongoAttendanceRepo struct {
	coll *mongo.Collection
}

func (r *mongoAttendanceRepo) Insert(ctx context.Context, record *models.Attendance) error {
	result, err := r.coll.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	record.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoAttendanceRepo) FindByUserDate(ctx context.Context, userID string, date string) (*models.Attendance, error) {
	var record models.Attendance
	err := r.coll.FindOne(ctx, bson.M{"userId": userID, "date": date}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *mongoAttendanceRepo) SetCheckOut(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"checkOutAt": at}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoAttendanceRepo) ListByUser(ctx context.Context, userID string, from string, to string) ([]models.Attendance, error) {
	query := bson.M{"userId": userID}
	if from != "" || to != "" {
		dateFilter := bson.M{}
		if from != "" {
			dateFilter["$gte"] = from
		}
		if to != "" {
			dateFilter["$lte"] = to
		}
		query["date"] = dateFilter
	}

	findOptions := options.Find().SetSort(bson.M{"date": -1})
	cursor, err := r.coll.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Attendance
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
