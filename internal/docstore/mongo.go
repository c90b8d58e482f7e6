package docstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultPollInterval = 2 * time.Second

// ConnectMongo dials MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100).
		SetMinPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

type mongoStore struct {
	db           *mongo.Database
	pollInterval time.Duration
}

// NewMongoStore wraps a MongoDB database as a document Store. Live
// queries are served by re-running the filtered find on an interval and
// pushing whenever the result set changes.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{db: db, pollInterval: defaultPollInterval}
}

func (m *mongoStore) Create(ctx context.Context, collection string, doc Document) (string, error) {
	id := primitive.NewObjectID()

	insert := bson.M{"_id": id}
	for k, v := range doc {
		insert[k] = v
	}

	_, err := m.db.Collection(collection).InsertOne(ctx, insert)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	return id.Hex(), nil
}

func (m *mongoStore) Update(ctx context.Context, collection, id string, partial Document) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := m.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M(partial)})
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoStore) Delete(ctx context.Context, collection, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var raw bson.M
	err = m.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return fromBSON(raw), nil
}

func (m *mongoStore) Find(ctx context.Context, collection string, filter Document) ([]Document, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor iteration error: %w", err)
	}

	return docs, nil
}

func (m *mongoStore) Watch(collection string, filter Document, onSnapshot func([]Document), onError func(error)) (Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &pollSubscription{cancel: cancel}

	go m.pollLoop(ctx, collection, filter, onSnapshot, onError)

	return sub, nil
}

func (m *mongoStore) pollLoop(ctx context.Context, collection string, filter Document, onSnapshot func([]Document), onError func(error)) {
	deliver := func(last []Document) ([]Document, bool) {
		docs, err := m.Find(ctx, collection, filter)
		if err != nil {
			if ctx.Err() != nil {
				return last, false
			}
			onError(err)
			return last, false
		}
		if !reflect.DeepEqual(docs, last) {
			onSnapshot(docs)
		}
		return docs, true
	}

	// Initial push as soon as the first query completes. An empty result
	// is still a push: the consumer needs to know the set is empty.
	docs, err := m.Find(ctx, collection, filter)
	if err != nil {
		if ctx.Err() == nil {
			onError(err)
		}
		return
	}
	onSnapshot(docs)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	last := docs
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var ok bool
			if last, ok = deliver(last); !ok {
				return
			}
		}
	}
}

type pollSubscription struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (s *pollSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// EnsureOrderIndexes creates the unique sparse index that makes order
// creation idempotent per submission attempt.
func EnsureOrderIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "idempotency_key", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetSparse(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	log.Printf("order indexes ensured on collection %s", collection)
	return nil
}

// fromBSON flattens a decoded bson.M into the plain Document shape the
// rest of the core consumes: _id becomes a hex string under "id",
// nested documents and arrays become maps and slices.
func fromBSON(raw bson.M) Document {
	doc := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				doc["id"] = oid.Hex()
				continue
			}
			doc["id"] = fmt.Sprint(v)
			continue
		}
		doc[k] = fromBSONValue(v)
	}
	return doc
}

func fromBSONValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		return fromBSON(t)
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromBSONValue(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	default:
		return v
	}
}
