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

type mongoTaskRepo struct {
	coll *mongo.Collection
}

func (r *mongoTaskRepo) Insert(ctx context.Context, task *models.Task) error {
	result, err := r.coll.InsertOne(ctx, task)
	if err != nil {
		return err
	}
	task.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoTaskRepo) FindByID(ctx context.Context, id string) (*models.Task, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var task models.Task
	err = r.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&task)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *mongoTaskRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	// 未完成在前，其次按优先级降序
	findOptions := options.Find().SetSort(bson.D{
		{Key: "completed", Value: 1},
		{Key: "priority", Value: -1},
		{Key: "createdAt", Value: -1},
	})
	cursor, err := r.coll.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *mongoTaskRepo) Complete(ctx context.Context, id string, at time.Time) (*models.Task, error) {
	task, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// 重复完成是幂等操作
	if task.Completed {
		return task, nil
	}

	update := bson.M{"$set": bson.M{
		"completed":   true,
		"completedAt": at,
		"updatedAt":   at,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Task
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": task.ID}, update, opts).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoTaskRepo) ListOverdue(ctx context.Context, now time.Time) ([]models.Task, error) {
	query := bson.M{
		"completed": false,
		"dueDate":   bson.M{"$lt": now},
	}
	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}
