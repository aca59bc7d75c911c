package audit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/repository"
)

// ErrNotRevertible is returned when the entry cannot be reverted at
// all: login actions, non-vehicle entities, or entries without an
// entity reference.
var ErrNotRevertible = errors.New("ação não pode ser revertida")

// ErrMissingSnapshot is returned when an entry that should carry a
// previous snapshot does not, so there is no state to restore.
var ErrMissingSnapshot = errors.New("registro sem dados anteriores para restaurar")

// Engine undoes the effect of a recorded action exactly once. An
// entry moves from active to reverted and never back (except for the
// internal compensation path when applying the inverse fails).
type Engine struct {
	Vehicles VehicleStore
	Logs     LogStore
	Recorder *Recorder

	// Now is the clock used for restored timestamps; defaults to
	// time.Now when nil (overridable in tests).
	Now func() time.Time
}

func NewEngine(vehicles VehicleStore, logs LogStore, rec *Recorder) *Engine {
	return &Engine{Vehicles: vehicles, Logs: logs, Recorder: rec}
}

// Revert undoes the operation recorded in the given log entry and
// marks the entry reverted. The revert itself is recorded as a new
// entry under the original action tag, with the snapshots swapped, so
// the revert history stays inspectable and a revert can itself be
// reverted, chaining chronologically.
//
// Ordering: the entry is claimed first via the conditional
// MarkReverted so two concurrent calls cannot both apply the inverse.
// If applying then fails, the claim is released best-effort.
func (e *Engine) Revert(ctx context.Context, actor Actor, logID uint64) (*model.AuditLog, error) {
	entry, err := e.Logs.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	if entry.Reverted == model.Sim {
		return nil, repository.ErrAlreadyReverted
	}
	if entry.Action == model.ActionLogin {
		return nil, fmt.Errorf("%w: ações de login são apenas registro", ErrNotRevertible)
	}
	if entry.EntityType != model.EntityVehicle || entry.EntityID == nil {
		return nil, fmt.Errorf("%w: entrada não referencia um veículo", ErrNotRevertible)
	}

	// Decode what we will need before claiming the entry, so a
	// malformed entry never flips the flag.
	var prevSnap *model.VehicleSnapshot
	if entry.PreviousData != nil {
		prevSnap, err = model.DecodeVehicleSnapshot(entry.PreviousData)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMissingSnapshot, err)
		}
	}
	if entry.Action != model.ActionCriarVeiculo && prevSnap == nil {
		return nil, ErrMissingSnapshot
	}

	if err := e.Logs.MarkReverted(ctx, entry.ID, actor.ID); err != nil {
		return nil, err
	}

	newEntityID := *entry.EntityID
	var restored *model.Vehicle
	switch entry.Action {
	case model.ActionCriarVeiculo:
		// Undo a creation by deleting. The vehicle may already be
		// gone through another path; that is not a failure.
		_, err = e.Vehicles.Delete(ctx, *entry.EntityID)

	case model.ActionExcluirVeiculo:
		// Undo a deletion by recreating from the snapshot. Ids are
		// not reused: the record gets a fresh identity and entries
		// referencing the old one go stale (accepted).
		restored = prevSnap.Vehicle()
		err = e.Vehicles.Create(ctx, restored)
		if err == nil {
			newEntityID = restored.ID
		}

	default:
		// Edit and status flips revert by restoring the previous
		// snapshot onto the vehicle as a full-field overwrite.
		restored = prevSnap.Vehicle()
		restored.ID = *entry.EntityID
		err = e.Vehicles.Update(ctx, restored)
	}
	if err != nil {
		if cerr := e.Logs.ClearReverted(ctx, entry.ID); cerr != nil {
			log.Printf("[audit] failed to release revert claim on log %d: %v", entry.ID, cerr)
		}
		return nil, err
	}

	now := time.Now().UTC()
	if e.Now != nil {
		now = e.Now()
	}
	entry.Reverted = model.Sim
	entry.RevertedAt = &now
	entry.RevertedBy = &actor.ID

	// The revert is itself auditable. Swapping the snapshots makes
	// the new entry's previousData the state being undone and its
	// newData the state just restored.
	var revPrev, revNext *model.VehicleSnapshot
	if entry.NewData != nil {
		if s, derr := model.DecodeVehicleSnapshot(entry.NewData); derr == nil {
			revPrev = s
		}
	}
	switch entry.Action {
	case model.ActionCriarVeiculo:
		revNext = nil
	case model.ActionExcluirVeiculo:
		revNext = model.SnapshotOf(restored)
	default:
		revNext = prevSnap
	}
	e.Recorder.Record(ctx, actor, entry.Action, entry.EntityType, &newEntityID,
		DescribeRevert(entry.Description), revPrev, revNext)

	return entry, nil
}
