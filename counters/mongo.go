package counters

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"forkful/models"
)

// MongoCounts stores counters as singleton documents keyed by name in the
// recipeCounts collection.
type MongoCounts struct {
	coll *mongo.Collection
}

func NewMongoCounts(coll *mongo.Collection) *MongoCounts {
	return &MongoCounts{coll: coll}
}

func (c *MongoCounts) Get(ctx context.Context, name string) (int64, bool, error) {
	var doc models.RecipeCount
	err := c.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return doc.Count, true, nil
}

func (c *MongoCounts) Set(ctx context.Context, name string, count int64) error {
	_, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"count": count}},
		options.Update().SetUpsert(true),
	)
	return err
}
