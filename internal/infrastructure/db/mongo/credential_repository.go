package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

const credentialCollection = "auth_users"

type MongoCredentialRepository struct {
	coll *mongo.Collection
}

func NewCredentialRepository(db *mongo.Database) *MongoCredentialRepository {
	return &MongoCredentialRepository{coll: db.Collection(credentialCollection)}
}

type mongoCredential struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	Email         string             `bson:"email"`
	PasswordHash  string             `bson:"password_hash"`
	EmailVerified bool               `bson:"email_verified"`
	CreatedAt     int64              `bson:"created_at"`
	UpdatedAt     int64              `bson:"updated_at"`
}

func (r *MongoCredentialRepository) Create(ctx context.Context, cred *ports.Credential) (*ports.Credential, error) {
	doc := mongoCredential{
		Email:         cred.Email,
		PasswordHash:  cred.PasswordHash,
		EmailVerified: cred.EmailVerified,
		CreatedAt:     cred.CreatedAt.Unix(),
		UpdatedAt:     cred.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert credential: %w", err)
	}

	created := *cred
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.UserID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoCredentialRepository) FindByEmail(ctx context.Context, email string) (*ports.Credential, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoCredentialRepository) FindByUserID(ctx context.Context, userID string) (*ports.Credential, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoCredentialRepository) SetVerified(ctx context.Context, userID string) error {
	return r.setFields(ctx, userID, bson.M{"email_verified": true})
}

func (r *MongoCredentialRepository) SetPasswordHash(ctx context.Context, userID, hash string) error {
	return r.setFields(ctx, userID, bson.M{"password_hash": hash})
}

func (r *MongoCredentialRepository) Delete(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}

func (r *MongoCredentialRepository) findOne(ctx context.Context, filter bson.M) (*ports.Credential, error) {
	var mc mongoCredential
	if err := r.coll.FindOne(ctx, filter).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	return &ports.Credential{
		UserID:        mc.ID.Hex(),
		Email:         mc.Email,
		PasswordHash:  mc.PasswordHash,
		EmailVerified: mc.EmailVerified,
		CreatedAt:     unixToTime(mc.CreatedAt),
		UpdatedAt:     unixToTime(mc.UpdatedAt),
	}, nil
}

func (r *MongoCredentialRepository) setFields(ctx context.Context, userID string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	fields["updated_at"] = time.Now().UTC().Unix()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update credential: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
