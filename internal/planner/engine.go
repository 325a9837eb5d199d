// internal/planner/engine.go
package planner

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FailedOp pairs the operation that halted a pass with the error it hit.
type FailedOp struct {
	Op  Op
	Err error
}

// SaveResult reports the outcome of one reconciliation pass. When Failed is
// nil the pass completed and the draft was rehydrated in place. Otherwise
// Succeeded holds the operations that were applied (and are NOT rolled
// back), Failed the one that broke the pass, and Pending the ones never
// attempted. After a partial save the draft must be treated as stale and
// re-hydrated from the partially-updated remote state; a blind retry risks
// duplicate creates for operations that already succeeded.
type SaveResult struct {
	Succeeded []Op
	Failed    *FailedOp
	Pending   []Op
}

// Partial reports whether the pass halted before applying every operation.
func (r *SaveResult) Partial() bool {
	return r.Failed != nil
}

// Engine executes reconciliation passes against a persistence gateway.
type Engine struct {
	gateway Gateway
}

// NewEngine returns an engine bound to the given gateway.
func NewEngine(gateway Gateway) *Engine {
	return &Engine{gateway: gateway}
}

// Save diffs the draft against its baseline and applies the resulting
// operations strictly sequentially: later operations may depend on
// identities returned by earlier ones, and there is no transaction boundary
// to batch against. The pass stops at the first failing operation.
//
// On full success the draft is rehydrated: DELETED nodes are dropped,
// surviving nodes receive their server identities and recomputed order
// indexes, and every tag resets to CLEAN.
func (e *Engine) Save(ctx context.Context, draft *Draft, baselineNotes string) (*SaveResult, error) {
	ops, err := ComputeOps(draft, baselineNotes)
	if err != nil {
		return nil, err
	}

	result := &SaveResult{}
	dayIDs := make(map[int]primitive.ObjectID)
	exIDs := make(map[[2]int]primitive.ObjectID)

	for i, op := range ops {
		if err := e.apply(ctx, draft, op, dayIDs, exIDs); err != nil {
			result.Failed = &FailedOp{Op: op, Err: err}
			result.Pending = ops[i+1:]
			return result, fmt.Errorf("save halted at %s: %w", op.Kind, err)
		}
		result.Succeeded = append(result.Succeeded, op)
	}

	rehydrate(draft, dayIDs, exIDs)
	return result, nil
}

func (e *Engine) apply(ctx context.Context, draft *Draft, op Op, dayIDs map[int]primitive.ObjectID, exIDs map[[2]int]primitive.ObjectID) error {
	switch op.Kind {
	case OpUpdatePlanNotes:
		return e.gateway.UpdatePlanNotes(ctx, draft.PlanID, op.Notes)

	case OpCreateDay:
		id, err := e.gateway.CreateDay(ctx, draft.PlanID, *op.Day)
		if err != nil {
			return err
		}
		dayIDs[op.DayKey] = id
		return nil

	case OpUpdateDay:
		return e.gateway.UpdateDay(ctx, op.TargetID, *op.Day)

	case OpDeleteDay:
		return e.gateway.DeleteDay(ctx, op.TargetID)

	case OpCreateExercise:
		dayID := op.DayID
		if dayID.IsZero() {
			resolved, ok := dayIDs[op.DayKey]
			if !ok {
				// The diff always orders a day's create before its children;
				// reaching this means the op list is corrupt.
				return fmt.Errorf("no identity resolved for day key %d", op.DayKey)
			}
			dayID = resolved
		}
		id, err := e.gateway.CreateExercise(ctx, dayID, *op.Exercise)
		if err != nil {
			return err
		}
		exIDs[[2]int{op.DayKey, op.ExKey}] = id
		return nil

	case OpUpdateExercise:
		return e.gateway.UpdateExercise(ctx, op.TargetID, *op.Exercise)

	case OpDeleteExercise:
		return e.gateway.DeleteExercise(ctx, op.TargetID)

	default:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	}
}

// rehydrate resets a fully saved draft to a clean baseline: deleted nodes
// drop out, created nodes take their server identities, and order indexes
// take the recomputed values.
func rehydrate(draft *Draft, dayIDs map[int]primitive.ObjectID, exIDs map[[2]int]primitive.ObjectID) {
	days := make([]*DayNode, 0, len(draft.Days))
	dayOrder := 0
	for i, day := range draft.Days {
		if day.Tag == TagDeleted {
			continue
		}
		if day.ID.IsZero() {
			day.ID = dayIDs[i]
		}
		day.Tag = TagClean
		day.Payload.OrderIndex = dayOrder
		dayOrder++

		exercises := make([]*ExerciseNode, 0, len(day.Exercises))
		exOrder := 0
		for j, ex := range day.Exercises {
			if ex.Tag == TagDeleted {
				continue
			}
			if ex.ID.IsZero() {
				ex.ID = exIDs[[2]int{i, j}]
			}
			ex.Tag = TagClean
			ex.Payload.OrderIndex = exOrder
			exOrder++
			exercises = append(exercises, ex)
		}
		day.Exercises = exercises
		days = append(days, day)
	}
	draft.Days = days
}
