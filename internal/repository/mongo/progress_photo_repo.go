// internal/repository/mongo/progress_photo_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"coachly/fitness-backend/internal/domain"
	"coachly/fitness-backend/internal/repository"
)

const progressPhotoCollectionName = "progress_photos"

// mongoProgressPhotoRepository implements repository.ProgressPhotoRepository
type mongoProgressPhotoRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressPhotoRepository creates a new ProgressPhoto repository.
func NewMongoProgressPhotoRepository(db *mongo.Database) repository.ProgressPhotoRepository {
	return &mongoProgressPhotoRepository{
		collection: db.Collection(progressPhotoCollectionName),
	}
}

// Create inserts progress photo metadata after the S3 upload is confirmed.
func (r *mongoProgressPhotoRepository) Create(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error) {
	if photo.ClientID == primitive.NilObjectID || photo.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("photo requires clientId and objectKey")
	}
	photo.ID = primitive.NewObjectID()
	photo.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, photo)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted photo ID")
	}
	return insertedID, nil
}

// GetByClientID retrieves a client's photos, newest first.
func (r *mongoProgressPhotoRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgressPhoto, error) {
	var photos []domain.ProgressPhoto
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"clientId": clientID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &photos); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return photos, nil
}

// EnsureProgressPhotoIndexes creates necessary indexes. Call during startup.
func EnsureProgressPhotoIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
