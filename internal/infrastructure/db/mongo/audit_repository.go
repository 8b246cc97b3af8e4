package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jooy-edu/jooy-auth/internal/core/ports"
)

const auditCollection = "login_attempts"

// MongoAuditRepository is the durable audit sink for login attempts. The
// rows back offline rate-limit recomputation; the live limiter runs on Redis.
type MongoAuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *MongoAuditRepository {
	return &MongoAuditRepository{coll: db.Collection(auditCollection)}
}

type mongoAttempt struct {
	Email     string `bson:"email"`
	IP        string `bson:"ip_address"`
	Success   bool   `bson:"success"`
	UserAgent string `bson:"user_agent,omitempty"`
	At        int64  `bson:"attempted_at"`
}

func (r *MongoAuditRepository) Record(ctx context.Context, attempt ports.LoginAttempt) error {
	doc := mongoAttempt{
		Email:     attempt.Email,
		IP:        attempt.IP,
		Success:   attempt.Success,
		UserAgent: attempt.UserAgent,
		At:        attempt.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}
	return nil
}
