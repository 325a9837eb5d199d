// internal/domain/plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeeklyPlan is one trainer-authored training week for a client.
// WeekStart is always a Monday and WeekEnd the following Sunday, both at
// midnight UTC. At most one active plan may exist per client per week; the
// repository deactivates overlapping actives before a new plan is created.
type WeeklyPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"` // Who composed the plan
	ClientID  primitive.ObjectID `bson:"clientId" json:"clientId"`   // Who the plan is for
	WeekStart time.Time          `bson:"weekStart" json:"weekStart"` // Monday, midnight UTC
	WeekEnd   time.Time          `bson:"weekEnd" json:"weekEnd"`     // Sunday, midnight UTC
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Days is populated only by hierarchy fetches; days live in their own
	// collection.
	Days []PlanDay `bson:"-" json:"days,omitempty"`
}

// PlanDay is a single day inside a weekly plan. DayOfWeek runs 0 (Monday)
// through 6 (Sunday); a plan holds at most one day per weekday.
type PlanDay struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"planId" json:"planId"`
	DayOfWeek  int                `bson:"dayOfWeek" json:"dayOfWeek"`
	Name       string             `bson:"name" json:"name"` // e.g., "Upper Body", "Leg Day"
	IsRestDay  bool               `bson:"isRestDay" json:"isRestDay"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Exercises is populated only by hierarchy fetches.
	Exercises []DayExercise `bson:"-" json:"exercises,omitempty"`
}

// DayExercise is one prescribed exercise within a plan day, referencing the
// trainer's exercise library. OrderIndex is dense and zero-based among the
// day's exercises.
type DayExercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayID       primitive.ObjectID `bson:"dayId" json:"dayId"`
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"` // Library reference
	Sets        int                `bson:"sets" json:"sets"`
	Reps        string             `bson:"reps" json:"reps"` // Free form, e.g. "8-12", "AMRAP"
	WeightKg    *float64           `bson:"weightKg,omitempty" json:"weightKg,omitempty"`
	RestSeconds int                `bson:"restSeconds" json:"restSeconds"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OrderIndex  int                `bson:"orderIndex" json:"orderIndex"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
