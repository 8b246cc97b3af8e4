package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

const profileCollection = "profiles"

// MongoProfileRepository stores profile rows keyed by the credential id
// (string form), one-to-one with users.
type MongoProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection(profileCollection)}
}

type mongoProfile struct {
	ID                  string `bson:"_id"`
	Email               string `bson:"email"`
	FullName            string `bson:"full_name,omitempty"`
	Username            string `bson:"username,omitempty"`
	AvatarURL           string `bson:"avatar_url,omitempty"`
	Role                string `bson:"role"`
	IsActive            bool   `bson:"is_active"`
	CreditsRemaining    int64  `bson:"credits_remaining"`
	OnboardingCompleted bool   `bson:"onboarding_completed"`
	LastLoginAt         int64  `bson:"last_login_at,omitempty"`
	CreatedAt           int64  `bson:"created_at"`
	UpdatedAt           int64  `bson:"updated_at"`
}

func (r *MongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	doc := mongoProfile{
		ID:                  profile.ID,
		Email:               profile.Email,
		FullName:            profile.FullName,
		Username:            profile.Username,
		AvatarURL:           profile.AvatarURL,
		Role:                profile.Role,
		IsActive:            profile.IsActive,
		CreditsRemaining:    profile.CreditsRemaining,
		OnboardingCompleted: profile.OnboardingCompleted,
		CreatedAt:           profile.CreatedAt.Unix(),
		UpdatedAt:           profile.UpdatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoProfileRepository) FindByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoProfileRepository) UpdatePartial(ctx context.Context, id string, patch domain.ProfilePatch) error {
	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.AvatarURL != nil {
		set["avatar_url"] = *patch.AvatarURL
	}
	if patch.OnboardingCompleted != nil {
		set["onboarding_completed"] = *patch.OnboardingCompleted
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *MongoProfileRepository) TouchLastLogin(ctx context.Context, id string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_login_at": time.Now().UTC().Unix()},
	})
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}

func (r *MongoProfileRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer cur.Close(ctx)

	var profiles []*domain.Profile
	for cur.Next(ctx) {
		var mp mongoProfile
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		profiles = append(profiles, fromMongoProfile(&mp))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (r *MongoProfileRepository) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	var mp mongoProfile
	if err := r.coll.FindOne(ctx, filter).Decode(&mp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return fromMongoProfile(&mp), nil
}

func fromMongoProfile(mp *mongoProfile) *domain.Profile {
	p := &domain.Profile{
		ID:                  mp.ID,
		Email:               mp.Email,
		FullName:            mp.FullName,
		Username:            mp.Username,
		AvatarURL:           mp.AvatarURL,
		Role:                mp.Role,
		IsActive:            mp.IsActive,
		CreditsRemaining:    mp.CreditsRemaining,
		OnboardingCompleted: mp.OnboardingCompleted,
		CreatedAt:           unixToTime(mp.CreatedAt),
		UpdatedAt:           unixToTime(mp.UpdatedAt),
	}
	if mp.LastLoginAt != 0 {
		t := unixToTime(mp.LastLoginAt)
		p.LastLoginAt = &t
	}
	return p
}
