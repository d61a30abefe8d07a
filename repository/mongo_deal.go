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

type mongoDealRepo struct {
	coll *mongo.Collection
}

func (r *mongoDealRepo) Insert(ctx context.Context, deal *models.Deal) error {
	result, err := r.coll.InsertOne(ctx, deal)
	if err != nil {
		return err
	}
	deal.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoDealRepo) FindByID(ctx context.Context, id string) (*models.Deal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// 非法ID视为不存在
		return nil, ErrNotFound
	}

	var deal models.Deal
	err = r.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&deal)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &deal, nil
}

func (r *mongoDealRepo) ListAll(ctx context.Context) ([]models.Deal, error) {
	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var deals []models.Deal
	if err := cursor.All(ctx, &deals); err != nil {
		return nil, err
	}
	return deals, nil
}

// UpdateStageCAS 以版本号做条件更新，防止并发阶段变更相互覆盖
func (r *mongoDealRepo) UpdateStageCAS(ctx context.Context, id string, version int64, stage string, probability int, closedAt *time.Time) (*models.Deal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{
		"stage":       stage,
		"probability": probability,
		"updatedAt":   time.Now(),
	}
	if closedAt != nil {
		set["closedAt"] = *closedAt
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Deal
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": objID, "version": version}, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// 区分记录不存在和版本不匹配
			count, countErr := r.coll.CountDocuments(ctx, bson.M{"_id": objID})
			if countErr == nil && count == 0 {
				return nil, ErrNotFound
			}
			return nil, ErrVersionConflict
		}
		return nil, err
	}
	return &updated, nil
}
