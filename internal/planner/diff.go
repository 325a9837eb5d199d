// internal/planner/diff.go
package planner

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OpKind identifies one kind of gateway call in a reconciliation pass.
type OpKind uint8

const (
	OpUpdatePlanNotes OpKind = iota
	OpCreateDay
	OpUpdateDay
	OpDeleteDay
	OpCreateExercise
	OpUpdateExercise
	OpDeleteExercise
)

func (k OpKind) String() string {
	switch k {
	case OpUpdatePlanNotes:
		return "update_plan_notes"
	case OpCreateDay:
		return "create_day"
	case OpUpdateDay:
		return "update_day"
	case OpDeleteDay:
		return "delete_day"
	case OpCreateExercise:
		return "create_exercise"
	case OpUpdateExercise:
		return "update_exercise"
	case OpDeleteExercise:
		return "delete_exercise"
	default:
		return "unknown"
	}
}

// Op is one pending gateway call. A day that does not exist remotely yet is
// referenced through DayKey (its index in the draft); the executor resolves
// the key to a server identity once the day's create has returned. The
// create for a day always precedes every op that references it.
type Op struct {
	Kind OpKind

	// DayKey/ExKey locate the source nodes in the draft. DayKey doubles as
	// the local reference for exercises created under a not-yet-persisted
	// day. Both are -1 when not applicable.
	DayKey int
	ExKey  int

	// DayID is set on exercise creates whose parent day already has a
	// server identity; TargetID addresses updates and deletes.
	DayID    primitive.ObjectID
	TargetID primitive.ObjectID

	Day      *DayPayload
	Exercise *ExercisePayload
	Notes    string
}

// ComputeOps validates the draft and computes the ordered operation list
// that brings the persisted hierarchy into agreement with it. It is pure:
// no gateway calls, no mutation of the draft. Order indexes are recomputed
// here, over the surviving (non-deleted) siblings in their current visual
// order; the draft's stored indexes are the baseline positions.
//
// An all-CLEAN draft with unchanged notes yields an empty list.
func ComputeOps(draft *Draft, baselineNotes string) ([]Op, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var ops []Op
	if draft.Notes != baselineNotes {
		ops = append(ops, Op{Kind: OpUpdatePlanNotes, DayKey: -1, ExKey: -1, Notes: draft.Notes})
	}

	dayOrder := 0
	for i, day := range draft.Days {
		switch day.Tag {
		case TagDeleted:
			// Exercises ride along with the cascade at the store; they are
			// not individually processed.
			ops = append(ops, Op{Kind: OpDeleteDay, DayKey: i, ExKey: -1, TargetID: day.ID})
			continue

		case TagNew:
			payload := day.Payload
			payload.OrderIndex = dayOrder
			ops = append(ops, Op{Kind: OpCreateDay, DayKey: i, ExKey: -1, Day: &payload})
			ops = append(ops, childOps(day, i)...)

		case TagModified:
			payload := day.Payload
			payload.OrderIndex = dayOrder
			ops = append(ops, Op{Kind: OpUpdateDay, DayKey: i, ExKey: -1, TargetID: day.ID, Day: &payload})
			ops = append(ops, childOps(day, i)...)

		case TagClean:
			if day.Payload.OrderIndex != dayOrder {
				// Position shifted; emit an update carrying the new index.
				payload := day.Payload
				payload.OrderIndex = dayOrder
				ops = append(ops, Op{Kind: OpUpdateDay, DayKey: i, ExKey: -1, TargetID: day.ID, Day: &payload})
			}
			ops = append(ops, childOps(day, i)...)
		}
		dayOrder++
	}
	return ops, nil
}

// childOps emits the exercise operations for one surviving day.
func childOps(day *DayNode, dayKey int) []Op {
	var ops []Op
	exOrder := 0
	for j, ex := range day.Exercises {
		switch ex.Tag {
		case TagDeleted:
			ops = append(ops, Op{Kind: OpDeleteExercise, DayKey: dayKey, ExKey: j, TargetID: ex.ID})
			continue

		case TagNew:
			payload := ex.Payload
			payload.OrderIndex = exOrder
			ops = append(ops, Op{
				Kind:     OpCreateExercise,
				DayKey:   dayKey,
				ExKey:    j,
				DayID:    day.ID, // zero when the parent day is itself new
				Exercise: &payload,
			})

		case TagModified:
			payload := ex.Payload
			payload.OrderIndex = exOrder
			ops = append(ops, Op{Kind: OpUpdateExercise, DayKey: dayKey, ExKey: j, TargetID: ex.ID, Exercise: &payload})

		case TagClean:
			if ex.Payload.OrderIndex != exOrder {
				// Untouched payload whose position shifted: treated as
				// modified for the sole purpose of persisting the new index.
				payload := ex.Payload
				payload.OrderIndex = exOrder
				ops = append(ops, Op{Kind: OpUpdateExercise, DayKey: dayKey, ExKey: j, TargetID: ex.ID, Exercise: &payload})
			}
		}
		exOrder++
	}
	return ops
}

// validateDraft refuses drafts that must not reach the network: a weekday
// occupied by more than one non-deleted day, or a non-rest day with no
// surviving exercises.
func validateDraft(draft *Draft) error {
	var seen [7]bool
	for _, day := range draft.Days {
		if day.Tag == TagDeleted {
			continue
		}
		dow := day.Payload.DayOfWeek
		if dow < 0 || dow > 6 {
			return validationErrorf("day of week %d is out of range 0..6", dow)
		}
		if seen[dow] {
			return validationErrorf("weekday %d has more than one day", dow)
		}
		seen[dow] = true

		if day.Payload.IsRestDay {
			continue
		}
		surviving := 0
		for _, ex := range day.Exercises {
			if ex.Tag != TagDeleted {
				surviving++
			}
		}
		if surviving == 0 {
			return validationErrorf("day %q is not a rest day but has no exercises", day.Payload.Name)
		}
	}
	return nil
}
