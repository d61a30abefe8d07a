package repository

import (
	"context"

	"github.com/sailcrm/crm_server/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLeadRepo struct {
	coll *mongo.Collection
}

func (r *mongoLeadRepo) Insert(ctx context.Context, lead *models.Lead) error {
	result, err := r.coll.InsertOne(ctx, lead)
	if err != nil {
		return err
	}
	lead.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *mongoLeadRepo) FindByID(ctx context.Context, id string) (*models.Lead, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var lead models.Lead
	err = r.coll.FindOne(ctx, bson.M{"_id": objID}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *mongoLeadRepo) FindByEmail(ctx context.Context, email string) (*models.Lead, error) {
	var lead models.Lead
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&lead)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *mongoLeadRepo) List(ctx context.Context) ([]models.Lead, error) {
	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *mongoLeadRepo) Update(ctx context.Context, lead *models.Lead) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": lead.ID}, lead)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
