package repository

import (
	"context"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStageRepo struct {
	coll *mongo.Collection
}

func (r *mongoStageRepo) ListOrdered(ctx context.Context) ([]models.PipelineStage, error) {
	findOptions := options.Find().SetSort(bson.M{"order": 1})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stages []models.PipelineStage
	if err := cursor.All(ctx, &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

func (r *mongoStageRepo) FindByLabel(ctx context.Context, label string) (*models.PipelineStage, error) {
	var stage models.PipelineStage
	err := r.coll.FindOne(ctx, bson.M{"label": label}).Decode(&stage)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

func (r *mongoStageRepo) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *mongoStageRepo) InsertMany(ctx context.Context, stages []models.PipelineStage) error {
	docs := make([]interface{}, 0, len(stages))
	for _, stage := range stages {
		docs = append(docs, stage)
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}
