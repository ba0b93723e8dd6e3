package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harudiary/haru-backend/internal/database"
	"github.com/harudiary/haru-backend/internal/lock"
)

// LockConfigCollection is the Mongo collection holding per-user lock settings
const LockConfigCollection = "lock_configs"

// MongoLockConfigs persists lock.Config documents keyed by user ID.
// It satisfies lock.ConfigRepository.
type MongoLockConfigs struct{}

func NewMongoLockConfigs() *MongoLockConfigs {
	return &MongoLockConfigs{}
}

func (r *MongoLockConfigs) Get(ctx context.Context, userID string) (*lock.Config, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := database.DB.Collection(LockConfigCollection)

	var doc struct {
		Config lock.Config `bson:"config"`
	}
	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc.Config, nil
}

func (r *MongoLockConfigs) Set(ctx context.Context, userID string, cfg lock.Config) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := database.DB.Collection(LockConfigCollection)

	_, err := collection.ReplaceOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"_id": userID, "config": cfg},
		options.Replace().SetUpsert(true),
	)
	return err
}
