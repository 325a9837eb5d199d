// internal/domain/workout_log.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoggedSet records what the client actually performed for one prescribed
// exercise of a plan day.
type LoggedSet struct {
	DayExerciseID primitive.ObjectID `bson:"dayExerciseId" json:"dayExerciseId"`
	SetsDone      int                `bson:"setsDone" json:"setsDone"`
	RepsDone      string             `bson:"repsDone,omitempty" json:"repsDone,omitempty"`
	WeightKg      *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
}

// WorkoutLog is a client's record of executing one plan day.
type WorkoutLog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	DayID       primitive.ObjectID `bson:"dayId" json:"dayId"`
	PerformedAt time.Time          `bson:"performedAt" json:"performedAt"`
	Sets        []LoggedSet        `bson:"sets,omitempty" json:"sets,omitempty"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
