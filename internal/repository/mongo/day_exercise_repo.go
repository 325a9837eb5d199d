// internal/repository/mongo/day_exercise_repo.go
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

const dayExerciseCollectionName = "day_exercises"

// mongoDayExerciseRepository implements repository.DayExerciseRepository
type mongoDayExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoDayExerciseRepository creates a new DayExercise repository.
func NewMongoDayExerciseRepository(db *mongo.Database) repository.DayExerciseRepository {
	return &mongoDayExerciseRepository{
		collection: db.Collection(dayExerciseCollectionName),
	}
}

// Create inserts a new prescribed exercise row.
func (r *mongoDayExerciseRepository) Create(ctx context.Context, ex *domain.DayExercise) (primitive.ObjectID, error) {
	if ex.DayID == primitive.NilObjectID || ex.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("day exercise requires dayId and exerciseId")
	}
	if ex.Sets < 1 {
		return primitive.NilObjectID, errors.New("sets must be a positive integer")
	}
	ex.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	ex.CreatedAt = now
	ex.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, ex)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted exercise ID")
	}
	return insertedID, nil
}

// GetByDayID retrieves all exercises of a day, sorted by orderIndex.
func (r *mongoDayExerciseRepository) GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.DayExercise, error) {
	return r.find(ctx, bson.M{"dayId": dayID})
}

// GetByDayIDs retrieves the exercises of several days in one query, sorted by
// dayId then orderIndex. Used by hierarchy fetches to avoid N+1 round trips.
func (r *mongoDayExerciseRepository) GetByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.DayExercise, error) {
	if len(dayIDs) == 0 {
		return []domain.DayExercise{}, nil
	}
	return r.find(ctx, bson.M{"dayId": bson.M{"$in": dayIDs}})
}

func (r *mongoDayExerciseRepository) find(ctx context.Context, filter bson.M) ([]domain.DayExercise, error) {
	var exercises []domain.DayExercise
	findOptions := options.Find().SetSort(bson.D{
		{Key: "dayId", Value: 1},
		{Key: "orderIndex", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}

// Update modifies an existing prescribed exercise. The DayID is never changed.
func (r *mongoDayExerciseRepository) Update(ctx context.Context, ex *domain.DayExercise) error {
	if ex.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}

	filter := bson.M{"_id": ex.ID}
	update := bson.M{
		"$set": bson.M{
			"exerciseId":  ex.ExerciseID,
			"sets":        ex.Sets,
			"reps":        ex.Reps,
			"weightKg":    ex.WeightKg, // Pass pointer directly; nil clears the weight
			"restSeconds": ex.RestSeconds,
			"notes":       ex.Notes,
			"orderIndex":  ex.OrderIndex,
			"updatedAt":   time.Now().UTC(),
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

// Delete removes one prescribed exercise.
func (r *mongoDayExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByDayID removes every exercise of a day. Deleting zero rows is fine;
// the day may have been a rest day.
func (r *mongoDayExerciseRepository) DeleteByDayID(ctx context.Context, dayID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"dayId": dayID})
	return err
}

// EnsureDayExerciseIndexes creates necessary indexes. Call during startup.
func EnsureDayExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dayId", Value: 1}, {Key: "orderIndex", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
