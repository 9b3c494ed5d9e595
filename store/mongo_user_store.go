package store

import (
	"context"
	"fmt"
	"time"

	"go-shop/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

// MongoUserStore keeps users in the "users" collection, keyed by _id.
type MongoUserStore struct {
	Collection *mongo.Collection
}

// NewMongoUserStore uses the users collection of database db.
func NewMongoUserStore(client *mongo.Client, db string) *MongoUserStore {
	return &MongoUserStore{Collection: client.Database(db).Collection("users")}
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: mongo ping: %w", err)
	}
	return client, nil
}

// List returns every user ordered by insertion.
func (m *MongoUserStore) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	cursor, err := m.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("store: find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("store: decode users: %w", err)
	}
	for i := range users {
		if users[i].Role == "" {
			users[i].Role = models.RoleCustomer
		}
	}
	return users, nil
}

// Insert stores a new user document.
func (m *MongoUserStore) Insert(ctx context.Context, u models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := m.Collection.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrUserExists, u.ID)
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	return nil
}

// Update replaces the document with u's id.
func (m *MongoUserStore) Update(ctx context.Context, u models.User) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := m.Collection.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return fmt.Errorf("store: update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, u.ID)
	}
	return nil
}

// Delete removes the document with id.
func (m *MongoUserStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := m.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("store: delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return nil
}
