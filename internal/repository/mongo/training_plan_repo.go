// internal/repository/mongo/training_plan_repo.go
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
	"coachly/fitness-backend/internal/schedule"
)

const trainingPlanCollectionName = "training_plans"

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan with its embedded weeks and days.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires clientId, trainerId, and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByClientID retrieves all plans assigned to a client, newest first.
func (r *mongoTrainingPlanRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.findPlans(ctx, bson.M{"clientId": clientID})
}

// GetByClientAndTrainerID retrieves all plans for a client created by a
// specific trainer, newest first.
func (r *mongoTrainingPlanRepository) GetByClientAndTrainerID(ctx context.Context, clientID, trainerID primitive.ObjectID) ([]domain.TrainingPlan, error) {
	return r.findPlans(ctx, bson.M{"clientId": clientID, "trainerId": trainerID})
}

func (r *mongoTrainingPlanRepository) findPlans(ctx context.Context, filter bson.M) ([]domain.TrainingPlan, error) {
	var plans []domain.TrainingPlan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Empty slice when no plans found (not an error)
	return plans, nil
}

// SetDayCompletion marks an embedded day completed (or clears the mark when
// completedAt is nil). Matches the day across all weeks via array filters.
func (r *mongoTrainingPlanRepository) SetDayCompletion(ctx context.Context, planID primitive.ObjectID, dayID string, completedAt *time.Time) error {
	filter := bson.M{"_id": planID}
	update := bson.M{
		"$set": bson.M{
			"weeks.$[].days.$[day].completedAt": completedAt,
			"updatedAt":                         time.Now().UTC(),
		},
	}
	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{bson.M{"day.id": dayID}},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetArrayFilters(arrayFilters))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	if result.ModifiedCount == 0 {
		// Plan matched but no embedded day did; surface it so the service
		// can distinguish a bad day id from an idempotent re-completion.
		return repository.ErrUpdateFailed
	}
	return nil
}

// SetPlanCompletion marks the plan itself completed (or reopens it).
func (r *mongoTrainingPlanRepository) SetPlanCompletion(ctx context.Context, planID primitive.ObjectID, completedAt *time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"completedAt": completedAt,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ShiftSchedule durably applies the schedule shift: the suffix of weeks
// starting at fromWeekID moves so that week's day-0 slot lands on
// startDateKey, with every day anchor recomputed from its new week start.
// The transformation itself is the engine's; this method persists the
// rewritten weeks array in a single update.
func (r *mongoTrainingPlanRepository) ShiftSchedule(ctx context.Context, planID primitive.ObjectID, fromWeekID, startDateKey, timezone string) error {
	plan, err := r.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	result, err := schedule.ComputeShift(plan, fromWeekID, startDateKey, timezone)
	if err != nil {
		return err
	}
	if result.OffsetDays == 0 {
		return nil
	}

	update := bson.M{
		"$set": bson.M{
			"weeks":     result.Plan.Weeks,
			"updatedAt": time.Now().UTC(),
		},
	}
	updateResult, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if updateResult.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a plan; the filter enforces trainer ownership.
func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, planID, trainerID primitive.ObjectID) error {
	if planID == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return errors.New("plan ID and trainer ID are required for deletion")
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": planID, "trainerId": trainerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the plan didn't exist or it belongs to another trainer.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: plans for a client by a trainer
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
		{
			// Day completion and shift updates look up embedded ids
			Keys:    bson.D{{Key: "weeks.id", Value: 1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
