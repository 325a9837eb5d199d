// internal/repository/mongo/plan_repo.go
package mongo

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const weeklyPlanCollectionName = "weekly_plans"

// mongoWeeklyPlanRepository implements repository.WeeklyPlanRepository
type mongoWeeklyPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoWeeklyPlanRepository creates a new WeeklyPlan repository.
func NewMongoWeeklyPlanRepository(db *mongo.Database) repository.WeeklyPlanRepository {
	return &mongoWeeklyPlanRepository{
		collection: db.Collection(weeklyPlanCollectionName),
	}
}

// Create inserts a new weekly plan.
func (r *mongoWeeklyPlanRepository) Create(ctx context.Context, plan *domain.WeeklyPlan) (primitive.ObjectID, error) {
	if plan.ClientID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan requires clientId and trainerId")
	}
	if plan.WeekStart.IsZero() || plan.WeekEnd.IsZero() {
		return primitive.NilObjectID, errors.New("plan requires week bounds")
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

// GetByID retrieves a single weekly plan by its ID.
func (r *mongoWeeklyPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyPlan, error) {
	var plan domain.WeeklyPlan
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByClientAndTrainerID retrieves all plans for a specific client created by a specific trainer.
func (r *mongoWeeklyPlanRepository) GetByClientAndTrainerID(ctx context.Context, clientID, trainerID primitive.ObjectID) ([]domain.WeeklyPlan, error) {
	var plans []domain.WeeklyPlan
	filter := bson.M{
		"clientId":  clientID,
		"trainerId": trainerID,
	}
	// Newest week first
	findOptions := options.Find().SetSort(bson.D{{Key: "weekStart", Value: -1}})

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
	// Return empty slice if no plans found (not an error)
	return plans, nil
}

// GetActiveForClientWeek retrieves the active plan covering the given week, if any.
func (r *mongoWeeklyPlanRepository) GetActiveForClientWeek(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) (*domain.WeeklyPlan, error) {
	var plan domain.WeeklyPlan
	filter := bson.M{
		"clientId":  clientID,
		"weekStart": weekStart,
		"isActive":  true,
	}
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// UpdateNotes sets the trainer notes on a plan.
func (r *mongoWeeklyPlanRepository) UpdateNotes(ctx context.Context, id primitive.ObjectID, notes string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"notes":     notes,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateOverlapping clears the active flag on every active plan for the
// client whose weekStart matches the given week. Called before creating a new
// active plan so that at most one active plan exists per client per week.
func (r *mongoWeeklyPlanRepository) DeactivateOverlapping(ctx context.Context, clientID primitive.ObjectID, weekStart time.Time) error {
	filter := bson.M{
		"clientId":  clientID,
		"weekStart": weekStart,
		"isActive":  true,
	}
	update := bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// Delete removes a plan, ensuring it belongs to the specified trainer.
func (r *mongoWeeklyPlanRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	if id == primitive.NilObjectID || trainerID == primitive.NilObjectID {
		return errors.New("plan ID and trainer ID are required for deletion")
	}

	filter := bson.M{
		"_id":       id,
		"trainerId": trainerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the plan didn't exist or it belongs to another trainer.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWeeklyPlanIndexes creates necessary indexes. Call during startup.
func EnsureWeeklyPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query pattern: plans for a client by a trainer
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			// Active plan lookup per client/week
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "weekStart", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
