package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clubportal/internal/shared/logger"
)

// profileDocument is the stored shape of one namespace.
type profileDocument struct {
	ID        string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// DocumentCollection is the subset of *mongo.Collection the backend uses.
type DocumentCollection interface {
	FindOne(ctx context.Context, filter interface{}) SingleResult
	UpsertOne(ctx context.Context, filter interface{}, update interface{}) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) error
}

// SingleResult decodes one document.
type SingleResult interface {
	Decode(v interface{}) error
}

// MongoCollectionAdapter makes *mongo.Collection satisfy DocumentCollection.
type MongoCollectionAdapter struct {
	col *mongo.Collection
}

// NewMongoCollectionAdapter wraps col.
func NewMongoCollectionAdapter(col *mongo.Collection) *MongoCollectionAdapter {
	return &MongoCollectionAdapter{col: col}
}

func (a *MongoCollectionAdapter) FindOne(ctx context.Context, filter interface{}) SingleResult {
	return a.col.FindOne(ctx, filter)
}

func (a *MongoCollectionAdapter) UpsertOne(ctx context.Context, filter interface{}, update interface{}) error {
	_, err := a.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (a *MongoCollectionAdapter) UpdateOne(ctx context.Context, filter interface{}, update interface{}) error {
	_, err := a.col.UpdateOne(ctx, filter, update)
	return err
}

// MongoBackend keeps one document per namespace. Every write is a single-document
// update, which MongoDB applies atomically.
type MongoBackend struct {
	col    DocumentCollection
	client *mongo.Client
	logger logger.Logger
	now    func() time.Time
}

// NewMongoBackend creates a backend over col. client may be nil when the caller owns it.
func NewMongoBackend(col DocumentCollection, client *mongo.Client, log logger.Logger) *MongoBackend {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &MongoBackend{
		col:    col,
		client: client,
		logger: log.WithComponent("storage.mongodb"),
		now:    time.Now,
	}
}

// ConnectMongoBackend dials uri and uses database.collection.
func ConnectMongoBackend(ctx context.Context, uri, database, collection string, log logger.Logger) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	col := client.Database(database).Collection(collection)
	return NewMongoBackend(NewMongoCollectionAdapter(col), client, log), nil
}

func (m *MongoBackend) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var doc profileDocument
	err := m.col.FindOne(ctx, bson.M{"_id": namespace}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongodb get %s/%s: %w", namespace, key, err)
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (m *MongoBackend) Set(ctx context.Context, namespace string, values map[string]string) error {
	set := bson.M{"updated_at": m.now()}
	for k, v := range values {
		set["values."+k] = v
	}
	if err := m.col.UpsertOne(ctx, bson.M{"_id": namespace}, bson.M{"$set": set}); err != nil {
		m.logger.WithFields(map[string]interface{}{"namespace": namespace}).
			Errorf("Failed to upsert profile document: %v", err)
		return fmt.Errorf("mongodb set %s: %w", namespace, err)
	}
	return nil
}

func (m *MongoBackend) Remove(ctx context.Context, namespace string, keys ...string) error {
	unset := bson.M{}
	for _, k := range keys {
		unset["values."+k] = ""
	}
	update := bson.M{"$unset": unset, "$set": bson.M{"updated_at": m.now()}}
	if err := m.col.UpdateOne(ctx, bson.M{"_id": namespace}, update); err != nil {
		return fmt.Errorf("mongodb remove %s: %w", namespace, err)
	}
	return nil
}

// Ping checks the server when the backend owns a client.
func (m *MongoBackend) Ping(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Ping(ctx, nil)
}

func (m *MongoBackend) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
