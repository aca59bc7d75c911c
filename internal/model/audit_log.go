package model

import (
	"encoding/json"
	"time"
)

// Action enumerates the auditable action kinds. The values are
// persisted verbatim in the `audit_logs.action` enum column.
type Action string

const (
	ActionCriarVeiculo      Action = "criar_veiculo"
	ActionEditarVeiculo     Action = "editar_veiculo"
	ActionExcluirVeiculo    Action = "excluir_veiculo"
	ActionMarcarPericia     Action = "marcar_pericia"
	ActionReverterPericia   Action = "reverter_pericia"
	ActionMarcarDevolvido   Action = "marcar_devolvido"
	ActionDesfazerDevolucao Action = "desfazer_devolucao"
	ActionLogin             Action = "login"
)

// EntityType names the kind of record an audit entry points at.
type EntityType string

const (
	EntityVehicle EntityType = "vehicle"
	EntityUser    EntityType = "user"
)

// AuditLog mirrors the `audit_logs` table. Entries are written once
// per mutating action and are immutable except for the reverted flag
// trio, which flips exactly once.
//
// EntityID is a plain reference, not a foreign key: it may point at a
// vehicle that was deleted later, and after a delete is reverted the
// recreated vehicle gets a fresh id, so older entries referencing the
// old id go stale. That orphaning is accepted behavior.
//
// PreviousData/NewData hold the full vehicle snapshot taken around the
// mutation, stored verbatim as JSON. They are decoded defensively at
// revert time (see DecodeVehicleSnapshot); the revert engine never
// rewrites them.
//
// Invariant: RevertedAt and RevertedBy are non-nil iff Reverted == Sim,
// and once Sim the entry is terminal.
type AuditLog struct {
	ID           uint64          `json:"id"`
	UserID       uint64          `json:"userId"`
	Username     string          `json:"username"`
	Action       Action          `json:"action"`
	EntityType   EntityType      `json:"entityType"`
	EntityID     *uint64         `json:"entityId"`
	Description  string          `json:"description"`
	PreviousData json.RawMessage `json:"previousData"`
	NewData      json.RawMessage `json:"newData"`
	Reverted     SimNao          `json:"reverted"`
	RevertedAt   *time.Time      `json:"revertedAt"`
	RevertedBy   *uint64         `json:"revertedBy"`
	CreatedAt    time.Time       `json:"createdAt"`
}
