// internal/planner/node.go
package planner

import (
	"alcyxob/fitness-planner/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag marks how a draft node differs from its persisted baseline. A node is
// always in exactly one state; the reconciliation pass switches over the tag
// exhaustively instead of combining independent booleans.
type Tag uint8

const (
	// TagClean marks a hydrated node that matches the baseline.
	TagClean Tag = iota
	// TagNew marks a node authored locally; it has no server identity yet.
	TagNew
	// TagModified marks a hydrated node whose payload was edited.
	TagModified
	// TagDeleted marks a hydrated node scheduled for deletion. The node
	// stays in the draft until the save pass consumes it.
	TagDeleted
)

func (t Tag) String() string {
	switch t {
	case TagClean:
		return "clean"
	case TagNew:
		return "new"
	case TagModified:
		return "modified"
	case TagDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// DayPayload is the editable content of a plan day.
type DayPayload struct {
	DayOfWeek  int // 0=Monday .. 6=Sunday
	Name       string
	IsRestDay  bool
	OrderIndex int
}

// ExercisePayload is the editable content of one prescribed exercise.
type ExercisePayload struct {
	ExerciseID  primitive.ObjectID // library reference
	Sets        int
	Reps        string
	WeightKg    *float64
	RestSeconds int
	Notes       string
	OrderIndex  int
}

// ExerciseNode is one exercise entry in a draft. ID is the zero ObjectID
// until the store has issued an identity. For hydrated nodes,
// Payload.OrderIndex holds the baseline position; the save pass compares it
// against the recomputed position to detect pure reorders.
type ExerciseNode struct {
	ID      primitive.ObjectID
	Tag     Tag
	Payload ExercisePayload
}

// DayNode is one day entry in a draft, holding its exercises in visual order.
type DayNode struct {
	ID        primitive.ObjectID
	Tag       Tag
	Payload   DayPayload
	Exercises []*ExerciseNode
}

// DayPatch carries edits to a day's payload; nil fields are left untouched.
type DayPatch struct {
	Name      *string
	IsRestDay *bool
}

// ExercisePatch carries edits to an exercise payload; nil fields are left
// untouched. ClearWeight removes a previously set weight.
type ExercisePatch struct {
	ExerciseID  *primitive.ObjectID
	Sets        *int
	Reps        *string
	WeightKg    *float64
	ClearWeight bool
	RestSeconds *int
	Notes       *string
}

func dayPayloadFrom(d *domain.PlanDay) DayPayload {
	return DayPayload{
		DayOfWeek:  d.DayOfWeek,
		Name:       d.Name,
		IsRestDay:  d.IsRestDay,
		OrderIndex: d.OrderIndex,
	}
}

func exercisePayloadFrom(e *domain.DayExercise) ExercisePayload {
	return ExercisePayload{
		ExerciseID:  e.ExerciseID,
		Sets:        e.Sets,
		Reps:        e.Reps,
		WeightKg:    e.WeightKg,
		RestSeconds: e.RestSeconds,
		Notes:       e.Notes,
		OrderIndex:  e.OrderIndex,
	}
}
