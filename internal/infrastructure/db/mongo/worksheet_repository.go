package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Jooy-edu/jooy-auth/internal/core/domain"
)

const worksheetCollection = "worksheets"

type MongoWorksheetRepository struct {
	coll *mongo.Collection
}

func NewWorksheetRepository(db *mongo.Database) *MongoWorksheetRepository {
	return &MongoWorksheetRepository{coll: db.Collection(worksheetCollection)}
}

type mongoWorksheet struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Subject     string             `bson:"subject"`
	Level       string             `bson:"level,omitempty"`
	PageCount   int                `bson:"page_count"`
	DocumentURL string             `bson:"document_url"`
	CreatedBy   string             `bson:"created_by"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

func (r *MongoWorksheetRepository) FindByID(ctx context.Context, id string) (*domain.Worksheet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrWorksheetNotFound
	}

	var mw mongoWorksheet
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrWorksheetNotFound
		}
		return nil, fmt.Errorf("find worksheet: %w", err)
	}
	return fromMongoWorksheet(&mw), nil
}

func (r *MongoWorksheetRepository) List(ctx context.Context, subject string) ([]*domain.Worksheet, error) {
	filter := bson.M{}
	if subject != "" {
		filter["subject"] = subject
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	defer cur.Close(ctx)

	var sheets []*domain.Worksheet
	for cur.Next(ctx) {
		var mw mongoWorksheet
		if err := cur.Decode(&mw); err != nil {
			return nil, fmt.Errorf("decode worksheet: %w", err)
		}
		sheets = append(sheets, fromMongoWorksheet(&mw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}
	return sheets, nil
}

func fromMongoWorksheet(mw *mongoWorksheet) *domain.Worksheet {
	return &domain.Worksheet{
		ID:          mw.ID.Hex(),
		Title:       mw.Title,
		Subject:     mw.Subject,
		Level:       mw.Level,
		PageCount:   mw.PageCount,
		DocumentURL: mw.DocumentURL,
		CreatedBy:   mw.CreatedBy,
		CreatedAt:   unixToTime(mw.CreatedAt),
		UpdatedAt:   unixToTime(mw.UpdatedAt),
	}
}
