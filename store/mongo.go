package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"forkful/hooks"
	"forkful/models"
)

// MongoStore implements RecipeStore on a MongoDB collection.
type MongoStore struct {
	coll    *mongo.Collection
	emitter *hooks.Emitter
}

func NewMongo(coll *mongo.Collection, emitter *hooks.Emitter) *MongoStore {
	return &MongoStore{coll: coll, emitter: emitter}
}

func (s *MongoStore) Create(ctx context.Context, rec *models.Recipe) (string, error) {
	rec.ID = primitive.NilObjectID
	res, err := s.coll.InsertOne(ctx, rec)
	if err != nil {
		return "", err
	}
	rec.ID = res.InsertedID.(primitive.ObjectID)

	after := *rec
	s.emitter.Emit(hooks.Event{Op: hooks.OpCreate, ID: rec.ID.Hex(), After: &after})
	return rec.ID.Hex(), nil
}

func (s *MongoStore) Read(ctx context.Context, id string) (*models.Recipe, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec models.Recipe
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, rec *models.Recipe) error {
	before, err := s.Read(ctx, id)
	if err != nil {
		return err
	}

	rec.ID = before.ID
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": before.ID}, rec)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	after := *rec
	s.emitter.Emit(hooks.Event{Op: hooks.OpUpdate, ID: id, Before: before, After: &after})
	return nil
}

func (s *MongoStore) Patch(ctx context.Context, id string, fields map[string]interface{}) error {
	before, err := s.Read(ctx, id)
	if err != nil {
		return err
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": before.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	after, err := s.Read(ctx, id)
	if err != nil {
		return err
	}
	s.emitter.Emit(hooks.Event{Op: hooks.OpUpdate, ID: id, Before: before, After: after})
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	before, err := s.Read(ctx, id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": before.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	s.emitter.Emit(hooks.Event{Op: hooks.OpDelete, ID: id, Before: before})
	return nil
}

func (s *MongoStore) Query(ctx context.Context, q Query) ([]models.Recipe, error) {
	filter := bson.M{}
	for k, v := range q.Filters {
		filter[k] = v
	}

	orderBy := q.OrderBy
	if orderBy == "" {
		orderBy = "publishDate"
	}

	dir := 1
	if q.Desc {
		dir = -1
	}
	scanDir := dir

	var bound bson.M
	switch {
	case q.After != nil:
		bound = anchorBound(orderBy, q.After, dir > 0)
	case q.Before != nil:
		bound = anchorBound(orderBy, q.Before, dir < 0)
		// Scan backwards from the anchor so the limit keeps the records
		// closest to it, then restore the base ordering below.
		scanDir = -dir
	}
	if bound != nil {
		filter = bson.M{"$and": bson.A{filter, bound}}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: orderBy, Value: scanDir},
		{Key: "_id", Value: scanDir},
	})
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recipes []models.Recipe
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}

	if scanDir != dir {
		reverseRecipes(recipes)
	}
	return recipes, nil
}

// anchorBound selects records strictly greater (gt) or strictly less than
// the anchor in (orderBy, _id) order.
func anchorBound(orderBy string, anchor *models.Recipe, gt bool) bson.M {
	cmp := "$lt"
	if gt {
		cmp = "$gt"
	}
	v := sortValue(orderBy, anchor)
	return bson.M{"$or": bson.A{
		bson.M{orderBy: bson.M{cmp: v}},
		bson.M{orderBy: v, "_id": bson.M{cmp: anchor.ID}},
	}}
}

func reverseRecipes(recipes []models.Recipe) {
	for i, j := 0, len(recipes)-1; i < j; i, j = i+1, j-1 {
		recipes[i], recipes[j] = recipes[j], recipes[i]
	}
}
