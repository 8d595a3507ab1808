package search

import (
	"context"
	"errors"
	"fmt"

	"shopapp/internal/infra"
	"shopapp/internal/shopquery"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// maxHits bounds a single search response.
const maxHits = 1000

// MongoIndex implements Index on a MongoDB collection with a text index on name.
type MongoIndex struct {
	collection *mongo.Collection
	cb         *infra.CircuitBreaker
}

// NewMongoIndex creates a Mongo-backed shop index. Every call goes through cb.
func NewMongoIndex(db *mongo.Database, collectionName string, cb *infra.CircuitBreaker) *MongoIndex {
	return &MongoIndex{collection: db.Collection(collectionName), cb: cb}
}

func (i *MongoIndex) exec(op string, fn func() error) error {
	err := i.cb.Execute(fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

func (i *MongoIndex) EnsureSchema(ctx context.Context) error {
	return i.exec("ensure schema", func() error {
		_, err := i.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name", Value: "text"}},
				Options: options.Index().SetName("shop_name_text"),
			},
			{
				Keys:    bson.D{{Key: "inVacations", Value: 1}, {Key: "createdAt", Value: 1}},
				Options: options.Index().SetName("shop_vacations_created"),
			},
		})
		return err
	})
}

func (i *MongoIndex) Upsert(ctx context.Context, docs ...ShopDocument) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true))
	}
	return i.exec("upsert", func() error {
		_, err := i.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
		return err
	})
}

func (i *MongoIndex) Delete(ctx context.Context, id uint) error {
	return i.exec("delete", func() error {
		_, err := i.collection.DeleteOne(ctx, bson.M{"_id": id})
		return err
	})
}

func (i *MongoIndex) Purge(ctx context.Context) error {
	return i.exec("purge", func() error {
		_, err := i.collection.DeleteMany(ctx, bson.M{})
		return err
	})
}

func (i *MongoIndex) Search(ctx context.Context, text string, f shopquery.Filter) ([]uint, error) {
	query, err := buildQuery(text, f)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "score": bson.M{"$meta": "textScore"}}).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}, {Key: "_id", Value: 1}}).
		SetLimit(maxHits)

	ids := make([]uint, 0)
	err = i.exec("search", func() error {
		cursor, err := i.collection.Find(ctx, query, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var hit struct {
				ID uint `bson:"_id"`
			}
			if err := cursor.Decode(&hit); err != nil {
				return err
			}
			ids = append(ids, hit.ID)
		}
		return cursor.Err()
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (i *MongoIndex) Ping(ctx context.Context) error {
	return i.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// ── Filter translation ──────────────────────────────────────────────────────

var documentFields = map[shopquery.Field]string{
	shopquery.FieldInVacations: "inVacations",
	shopquery.FieldCreatedAt:   "createdAt",
}

// buildQuery combines the $text match with every clause of f.
func buildQuery(text string, f shopquery.Filter) (bson.M, error) {
	query := bson.M{"$text": bson.M{"$search": text}}
	if len(f) == 0 {
		return query, nil
	}
	and := make([]bson.M, 0, len(f))
	for _, c := range f {
		field, ok := documentFields[c.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", c.Field)
		}
		switch c.Op {
		case shopquery.OpEq:
			and = append(and, bson.M{field: c.Value})
		case shopquery.OpGt:
			and = append(and, bson.M{field: bson.M{"$gt": c.Value}})
		case shopquery.OpLt:
			and = append(and, bson.M{field: bson.M{"$lt": c.Value}})
		case shopquery.OpBetween:
			and = append(and, bson.M{field: bson.M{"$gte": c.Value, "$lte": c.Upper}})
		default:
			return nil, fmt.Errorf("unsupported filter op %s", c.Op)
		}
	}
	query["$and"] = and
	return query, nil
}
