package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

const sessionCollection = "user_sessions"

type MongoSessionRepository struct {
	coll *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *MongoSessionRepository {
	return &MongoSessionRepository{coll: db.Collection(sessionCollection)}
}

type mongoSession struct {
	TokenID   string `bson:"token_id"`
	UserID    string `bson:"user_id"`
	UserAgent string `bson:"user_agent,omitempty"`
	IP        string `bson:"ip,omitempty"`
	IsActive  bool   `bson:"is_active"`
	CreatedAt int64  `bson:"created_at"`
	ExpiresAt int64  `bson:"expires_at"`
}

func (r *MongoSessionRepository) Create(ctx context.Context, rec *ports.SessionRecord) error {
	doc := mongoSession{
		TokenID:   rec.TokenID,
		UserID:    rec.UserID,
		UserAgent: rec.UserAgent,
		IP:        rec.IP,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt.Unix(),
		ExpiresAt: rec.ExpiresAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *MongoSessionRepository) MarkInactive(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("deactivate sessions: %w", err)
	}
	return nil
}
