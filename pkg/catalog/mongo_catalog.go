package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "plans"

type mongoCatalog struct {
	col *mongo.Collection
}

// NewMongoCatalog returns a Catalog backed by the "plans" collection.
func NewMongoCatalog(db *mongo.Database) Catalog {
	return &mongoCatalog{col: db.Collection(collectionName)}
}

func (c *mongoCatalog) FindByName(ctx context.Context, name string) (*Plan, error) {
	var plan Plan
	err := c.col.FindOne(ctx, bson.M{"name": name}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *mongoCatalog) List(ctx context.Context) ([]Plan, error) {
	cur, err := c.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "planNumber", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var plans []Plan
	if err := cur.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}
