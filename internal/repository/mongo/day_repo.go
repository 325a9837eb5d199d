// internal/repository/mongo/day_repo.go
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

const planDayCollectionName = "plan_days"

// mongoPlanDayRepository implements repository.PlanDayRepository
type mongoPlanDayRepository struct {
	collection *mongo.Collection
	exercises  repository.DayExerciseRepository // for the delete cascade
}

// NewMongoPlanDayRepository creates a new PlanDay repository. The exercise
// repository is needed because deleting a day cascades to its exercises.
func NewMongoPlanDayRepository(db *mongo.Database, exercises repository.DayExerciseRepository) repository.PlanDayRepository {
	return &mongoPlanDayRepository{
		collection: db.Collection(planDayCollectionName),
		exercises:  exercises,
	}
}

// Create inserts a new plan day.
func (r *mongoPlanDayRepository) Create(ctx context.Context, day *domain.PlanDay) (primitive.ObjectID, error) {
	if day.PlanID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day requires planId")
	}
	if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
		return primitive.NilObjectID, errors.New("dayOfWeek must be in 0..6")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day ID")
	}
	return insertedID, nil
}

// GetByPlanID retrieves all days of a plan, sorted by dayOfWeek then orderIndex.
func (r *mongoPlanDayRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	var days []domain.PlanDay
	filter := bson.M{"planId": planID}
	findOptions := options.Find().SetSort(bson.D{
		{Key: "dayOfWeek", Value: 1},
		{Key: "orderIndex", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// Update modifies an existing day. The PlanID is never changed.
func (r *mongoPlanDayRepository) Update(ctx context.Context, day *domain.PlanDay) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("day ID is required for update")
	}

	filter := bson.M{"_id": day.ID}
	update := bson.M{
		"$set": bson.M{
			"dayOfWeek":  day.DayOfWeek,
			"name":       day.Name,
			"isRestDay":  day.IsRestDay,
			"orderIndex": day.OrderIndex,
			"updatedAt":  time.Now().UTC(),
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

// Delete removes the day and then its exercises. The two deletes are separate
// statements; the exercise sweep runs second so a failure leaves orphaned
// exercise rows rather than a day pointing at nothing.
func (r *mongoPlanDayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return r.exercises.DeleteByDayID(ctx, id)
}

// EnsurePlanDayIndexes creates necessary indexes. Call during startup.
func EnsurePlanDayIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "dayOfWeek", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
