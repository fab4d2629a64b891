package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var _ Store = (*MongoStore)(nil)

const mongoCollection = "documents"

// MongoStore keeps every scope in one collection. The _id is "<scope>/<id>" so the same
// document id may exist under several scopes; data holds the fields as a subdocument and
// partial merges are $set operations on data.<field>.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDocument struct {
	Key       string    `bson:"_id"`
	Scope     string    `bson:"scope"`
	DocID     string    `bson:"doc_id"`
	Version   int64     `bson:"version"`
	Data      bson.Raw  `bson:"data"`
	CreatedAt time.Time `bson:"created_at"`
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}
}

// EnsureIndexes creates the scope index used by List.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "scope", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create scope index: %w", err)
	}
	return nil
}

func mongoKey(scope Scope, id string) string {
	return string(scope) + "/" + id
}

func (d *mongoDocument) document() (*Document, error) {
	fields := Fields{}
	if len(d.Data) > 0 {
		data, err := bson.MarshalExtJSON(d.Data, false, false)
		if err != nil {
			return nil, fmt.Errorf("encode document %s: %w", d.DocID, err)
		}
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", d.DocID, err)
		}
	}
	return &Document{ID: d.DocID, Version: d.Version, Fields: fields}, nil
}

func fieldsToBSON(fields Fields) (bson.D, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("convert fields: %w", err)
	}
	return doc, nil
}

func (s *MongoStore) Get(ctx context.Context, scope Scope, id string) (*Document, error) {
	var stored mongoDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: mongoKey(scope, id)}}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return stored.document()
}

func (s *MongoStore) List(ctx context.Context, scope Scope) ([]Document, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "scope", Value: string(scope)}})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer cur.Close(ctx)

	docs := []Document{}
	for cur.Next(ctx) {
		var stored mongoDocument
		if err := cur.Decode(&stored); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		doc, err := stored.document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (s *MongoStore) Add(ctx context.Context, scope Scope, fields Fields) (*Document, error) {
	data, err := fieldsToBSON(fields)
	if err != nil {
		return nil, err
	}
	id := bson.NewObjectID().Hex()
	_, err = s.coll.InsertOne(ctx, bson.D{
		{Key: "_id", Value: mongoKey(scope, id)},
		{Key: "scope", Value: string(scope)},
		{Key: "doc_id", Value: id},
		{Key: "version", Value: int64(1)},
		{Key: "data", Value: data},
		{Key: "created_at", Value: time.Now()},
	})
	if err != nil {
		return nil, fmt.Errorf("add document: %w", err)
	}
	return &Document{ID: id, Version: 1, Fields: fields.Clone()}, nil
}

func (s *MongoStore) Set(ctx context.Context, scope Scope, id string, fields Fields) (*Document, error) {
	data, err := fieldsToBSON(fields)
	if err != nil {
		return nil, err
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "scope", Value: string(scope)},
			{Key: "doc_id", Value: id},
			{Key: "data", Value: data},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: int64(1)}}},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: time.Now()}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored mongoDocument
	err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: mongoKey(scope, id)}}, update, opts).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("set document: %w", err)
	}
	return stored.document()
}

func (s *MongoStore) Update(ctx context.Context, scope Scope, id string, fields Fields, expectedVersion int64) (*Document, error) {
	key := mongoKey(scope, id)
	filter := bson.D{{Key: "_id", Value: key}}
	if expectedVersion != AnyVersion {
		filter = append(filter, bson.E{Key: "version", Value: expectedVersion})
	}

	sets := bson.D{}
	for name, raw := range fields {
		value, err := jsonValueToBSON(raw)
		if err != nil {
			return nil, err
		}
		sets = append(sets, bson.E{Key: "data." + name, Value: value})
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "version", Value: int64(1)}}}}
	if len(sets) > 0 {
		update = append(update, bson.E{Key: "$set", Value: sets})
	}

	var stored mongoDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored)
	if err == nil {
		return stored.document()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update document: %w", err)
	}

	count, err := s.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: key}})
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

func jsonValueToBSON(raw json.RawMessage) (interface{}, error) {
	wrapped := make([]byte, 0, len(raw)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, '}')

	var doc bson.D
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return nil, fmt.Errorf("convert field: %w", err)
	}
	if len(doc) != 1 {
		return nil, fmt.Errorf("convert field: unexpected shape")
	}
	return doc[0].Value, nil
}

func (s *MongoStore) Delete(ctx context.Context, scope Scope, id string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: mongoKey(scope, id)}})
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
