package repository

import (
	"context"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoOperationLogRepo struct {
	coll *mongo.Collection
}

func (r *mongoOperationLogRepo) Insert(ctx context.Context, log *models.OperationLog) error {
	_, err := r.coll.InsertOne(ctx, log)
	return err
}
