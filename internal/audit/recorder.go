// Package audit implements the activity log: the recorder that writes
// one entry per mutating operation and the engine that reverts a
// recorded operation exactly once. Durable state stays behind the
// store interfaces; this package owns only the policy.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/queue"
)

// Actor identifies the authenticated user performing an operation.
// The username is denormalized into every entry at write time.
type Actor struct {
	ID       uint64
	Username string
}

// VehicleStore is the slice of vehicle persistence the audit
// subsystem needs. *repository.VehicleRepo satisfies it.
type VehicleStore interface {
	Create(ctx context.Context, v *model.Vehicle) error
	Update(ctx context.Context, v *model.Vehicle) error
	Delete(ctx context.Context, id uint64) (bool, error)
	GetByID(ctx context.Context, id uint64) (*model.Vehicle, error)
}

// LogStore is the audit-log persistence contract.
// *repository.AuditLogRepo satisfies it.
type LogStore interface {
	Create(ctx context.Context, e *model.AuditLog) error
	GetByID(ctx context.Context, id uint64) (*model.AuditLog, error)
	MarkReverted(ctx context.Context, id, actorID uint64) error
	ClearReverted(ctx context.Context, id uint64) error
}

// Publisher pushes recorded entries onto the message broker for
// out-of-band consumers. It is optional and always best-effort.
type Publisher interface {
	PublishAuditRecorded(ctx context.Context, ev queue.AuditRecordedEvent) error
}

// Recorder writes audit entries after mutations have been applied.
// Failures to write are logged and swallowed: the audit trail is
// observability, not a transactional participant, and must never roll
// back or fail a business operation.
type Recorder struct {
	Logs      LogStore
	Publisher Publisher // may be nil
}

func NewRecorder(logs LogStore, pub Publisher) *Recorder {
	return &Recorder{Logs: logs, Publisher: pub}
}

// Record writes exactly one entry. prev/next are the full entity
// snapshots around the mutation; prev is nil for creations, next is
// nil for deletions. The returned entry is nil when the write failed.
func (r *Recorder) Record(ctx context.Context, actor Actor, action model.Action, entityType model.EntityType, entityID *uint64, description string, prev, next *model.VehicleSnapshot) *model.AuditLog {
	e := &model.AuditLog{
		UserID:      actor.ID,
		Username:    actor.Username,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		Reverted:    model.Nao,
	}
	if prev != nil {
		if raw, err := json.Marshal(prev); err == nil {
			e.PreviousData = raw
		}
	}
	if next != nil {
		if raw, err := json.Marshal(next); err == nil {
			e.NewData = raw
		}
	}
	if err := r.Logs.Create(ctx, e); err != nil {
		log.Printf("[audit] failed to write log entry (action=%s, user=%s): %v", action, actor.Username, err)
		return nil
	}
	if r.Publisher != nil {
		ev := queue.AuditRecordedEvent{
			LogID:       e.ID,
			UserID:      e.UserID,
			Username:    e.Username,
			Action:      string(e.Action),
			EntityType:  string(e.EntityType),
			Description: e.Description,
			CreatedAt:   e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if e.EntityID != nil {
			ev.EntityID = *e.EntityID
		}
		if err := r.Publisher.PublishAuditRecorded(ctx, ev); err != nil {
			log.Printf("[audit] failed to publish event for log %d: %v", e.ID, err)
		}
	}
	return e
}

// describeVehicle renders the "ABC1234 (Volkswagen Gol)" part used in
// entry descriptions, falling back gracefully when fields are empty.
func describeVehicle(v *model.Vehicle) string {
	label := v.Label()
	marca := ""
	if v.Marca != nil {
		marca = *v.Marca
	}
	modelo := ""
	if v.Modelo != nil {
		modelo = *v.Modelo
	}
	switch {
	case marca != "" && modelo != "":
		return fmt.Sprintf("%s (%s %s)", label, marca, modelo)
	case marca != "":
		return fmt.Sprintf("%s (%s)", label, marca)
	case modelo != "":
		return fmt.Sprintf("%s (%s)", label, modelo)
	}
	return label
}

// Description builders. Generated at call time from post-mutation
// state and never recomputed, so each one reads as a statement about
// the moment the action happened.

func DescribeCreate(v *model.Vehicle) string {
	return fmt.Sprintf("Veículo %s cadastrado", describeVehicle(v))
}

func DescribeEdit(v *model.Vehicle) string {
	return fmt.Sprintf("Veículo %s editado", describeVehicle(v))
}

func DescribeDelete(v *model.Vehicle) string {
	return fmt.Sprintf("Veículo %s excluído", describeVehicle(v))
}

func DescribeReturn(v *model.Vehicle) string {
	return fmt.Sprintf("Veículo %s marcado como devolvido", describeVehicle(v))
}

func DescribeUndoReturn(v *model.Vehicle) string {
	return fmt.Sprintf("Devolução do veículo %s desfeita", describeVehicle(v))
}

func DescribeInspection(v *model.Vehicle, status model.StatusPericia) string {
	if status == model.PericiaPendente {
		return fmt.Sprintf("Perícia do veículo %s revertida para pendente", describeVehicle(v))
	}
	return fmt.Sprintf("Perícia do veículo %s marcada como %s", describeVehicle(v), status)
}

func DescribeLogin(username string) string {
	return fmt.Sprintf("Usuário %s efetuou login", username)
}

func DescribeRevert(original string) string {
	return fmt.Sprintf("Ação revertida: %s", original)
}
