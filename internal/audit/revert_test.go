package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/repository"
)

func newTestEngine() (*Engine, *fakeVehicles, *fakeLogs) {
	vehicles := newFakeVehicles()
	logs := newFakeLogs()
	rec := NewRecorder(logs, nil)
	return NewEngine(vehicles, logs, rec), vehicles, logs
}

func seedEditEntry(t *testing.T, vehicles *fakeVehicles, logs *fakeLogs) (*model.Vehicle, *model.AuditLog) {
	t.Helper()
	ctx := context.Background()

	v := &model.Vehicle{
		PlacaOriginal: str("ABC1234"),
		Marca:         str("Fiat"),
		Modelo:        str("Uno"),
		StatusPericia: model.PericiaPendente,
		Devolvido:     model.Nao,
	}
	require.NoError(t, vehicles.Create(ctx, v))

	prev := model.SnapshotOf(v)
	v.Marca = str("Volkswagen")
	v.Modelo = str("Gol")
	v.Observacoes = str("repintado")
	require.NoError(t, vehicles.Update(ctx, v))

	entityID := v.ID
	entry := &model.AuditLog{
		UserID:     1,
		Username:   "delegado",
		Action:     model.ActionEditarVeiculo,
		EntityType: model.EntityVehicle,
		EntityID:   &entityID,
	}
	entry.PreviousData, _ = json.Marshal(prev)
	entry.NewData, _ = json.Marshal(model.SnapshotOf(v))
	require.NoError(t, logs.Create(ctx, entry))
	return v, entry
}

func TestRevertEditRestoresFullSnapshot(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()
	actor := Actor{ID: 7, Username: "escrivao"}

	v, entry := seedEditEntry(t, vehicles, logs)

	reverted, err := engine.Revert(ctx, actor, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Sim, reverted.Reverted)
	require.NotNil(t, reverted.RevertedBy)
	assert.Equal(t, uint64(7), *reverted.RevertedBy)

	got, err := vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fiat", *got.Marca)
	assert.Equal(t, "Uno", *got.Modelo)
	// Full-field restore: the field that only existed after the edit is
	// cleared, not merged.
	assert.Nil(t, got.Observacoes)
}

func TestRevertTwiceFails(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()
	actor := Actor{ID: 1, Username: "agente"}

	_, entry := seedEditEntry(t, vehicles, logs)

	_, err := engine.Revert(ctx, actor, entry.ID)
	require.NoError(t, err)
	_, err = engine.Revert(ctx, actor, entry.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyReverted)
}

func TestRevertCreateDeletesVehicle(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()
	actor := Actor{ID: 2, Username: "agente"}

	v := &model.Vehicle{PlacaOriginal: str("XYZ9A88"), StatusPericia: model.PericiaPendente, Devolvido: model.Nao}
	require.NoError(t, vehicles.Create(ctx, v))

	entityID := v.ID
	entry := &model.AuditLog{
		UserID: 2, Username: "agente",
		Action: model.ActionCriarVeiculo, EntityType: model.EntityVehicle, EntityID: &entityID,
	}
	entry.NewData, _ = json.Marshal(model.SnapshotOf(v))
	require.NoError(t, logs.Create(ctx, entry))

	_, err := engine.Revert(ctx, actor, entry.ID)
	require.NoError(t, err)

	_, err = vehicles.GetByID(ctx, v.ID)
	assert.ErrorIs(t, err, repository.ErrVehicleNotFound)
}

func TestRevertCreateToleratesMissingVehicle(t *testing.T) {
	engine, _, logs := newTestEngine()
	ctx := context.Background()

	entityID := uint64(999) // never created
	entry := &model.AuditLog{
		UserID: 2, Username: "agente",
		Action: model.ActionCriarVeiculo, EntityType: model.EntityVehicle, EntityID: &entityID,
	}
	require.NoError(t, logs.Create(ctx, entry))

	_, err := engine.Revert(ctx, Actor{ID: 2, Username: "agente"}, entry.ID)
	assert.NoError(t, err)
}

func TestRevertDeleteRecreatesWithNewID(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()
	actor := Actor{ID: 3, Username: "perito"}

	v := &model.Vehicle{
		PlacaOriginal: str("DEF5678"),
		Marca:         str("Chevrolet"),
		StatusPericia: model.PericiaFeita,
		Devolvido:     model.Nao,
	}
	require.NoError(t, vehicles.Create(ctx, v))
	oldID := v.ID

	prev := model.SnapshotOf(v)
	_, err := vehicles.Delete(ctx, oldID)
	require.NoError(t, err)

	entry := &model.AuditLog{
		UserID: 3, Username: "perito",
		Action: model.ActionExcluirVeiculo, EntityType: model.EntityVehicle, EntityID: &oldID,
	}
	entry.PreviousData, _ = json.Marshal(prev)
	require.NoError(t, logs.Create(ctx, entry))

	_, err = engine.Revert(ctx, actor, entry.ID)
	require.NoError(t, err)

	// Old id is gone for good; the record came back under a new one.
	_, err = vehicles.GetByID(ctx, oldID)
	assert.ErrorIs(t, err, repository.ErrVehicleNotFound)

	revertEntry := logs.latest()
	require.NotNil(t, revertEntry)
	require.NotNil(t, revertEntry.EntityID)
	assert.NotEqual(t, oldID, *revertEntry.EntityID)

	restored, err := vehicles.GetByID(ctx, *revertEntry.EntityID)
	require.NoError(t, err)
	assert.Equal(t, "DEF5678", *restored.PlacaOriginal)
	assert.Equal(t, model.PericiaFeita, restored.StatusPericia)
}

func TestRevertLoginRejected(t *testing.T) {
	engine, _, logs := newTestEngine()
	ctx := context.Background()

	entityID := uint64(5)
	entry := &model.AuditLog{
		UserID: 5, Username: "delegado",
		Action: model.ActionLogin, EntityType: model.EntityUser, EntityID: &entityID,
	}
	require.NoError(t, logs.Create(ctx, entry))

	_, err := engine.Revert(ctx, Actor{ID: 5, Username: "delegado"}, entry.ID)
	assert.ErrorIs(t, err, ErrNotRevertible)

	// A rejected entry is never claimed.
	got, err := logs.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Nao, got.Reverted)
}

func TestRevertMissingSnapshotRejectedWithoutClaim(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()

	v := &model.Vehicle{PlacaOriginal: str("GHI1J11"), StatusPericia: model.PericiaPendente, Devolvido: model.Nao}
	require.NoError(t, vehicles.Create(ctx, v))

	entityID := v.ID
	entry := &model.AuditLog{
		UserID: 1, Username: "agente",
		Action: model.ActionEditarVeiculo, EntityType: model.EntityVehicle, EntityID: &entityID,
		// no PreviousData
	}
	require.NoError(t, logs.Create(ctx, entry))

	_, err := engine.Revert(ctx, Actor{ID: 1, Username: "agente"}, entry.ID)
	assert.ErrorIs(t, err, ErrMissingSnapshot)

	got, err := logs.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Nao, got.Reverted)
}

func TestRevertUnknownEntryNotFound(t *testing.T) {
	engine, _, _ := newTestEngine()
	_, err := engine.Revert(context.Background(), Actor{ID: 1}, 12345)
	assert.ErrorIs(t, err, repository.ErrLogNotFound)
}

func TestRevertReleasesClaimWhenApplyFails(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()

	_, entry := seedEditEntry(t, vehicles, logs)
	vehicles.failUpdate = true

	_, err := engine.Revert(ctx, Actor{ID: 1, Username: "agente"}, entry.ID)
	require.Error(t, err)

	// Compensation put the flag back, so the entry stays revertible.
	got, err := logs.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Nao, got.Reverted)

	vehicles.failUpdate = false
	_, err = engine.Revert(ctx, Actor{ID: 1, Username: "agente"}, entry.ID)
	assert.NoError(t, err)
}

func TestRevertWritesAuditEntryWithOriginalAction(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()

	_, entry := seedEditEntry(t, vehicles, logs)

	_, err := engine.Revert(ctx, Actor{ID: 9, Username: "corregedor"}, entry.ID)
	require.NoError(t, err)

	revertEntry := logs.latest()
	require.NotNil(t, revertEntry)
	assert.NotEqual(t, entry.ID, revertEntry.ID)
	assert.Equal(t, model.ActionEditarVeiculo, revertEntry.Action)
	assert.Equal(t, "corregedor", revertEntry.Username)
	assert.Contains(t, revertEntry.Description, "Ação revertida:")

	// Snapshots are swapped relative to the original entry: the revert's
	// newData is the state that was just restored.
	restoredSnap, err := model.DecodeVehicleSnapshot(revertEntry.NewData)
	require.NoError(t, err)
	assert.Equal(t, "Fiat", *restoredSnap.Marca)

	undoneSnap, err := model.DecodeVehicleSnapshot(revertEntry.PreviousData)
	require.NoError(t, err)
	assert.Equal(t, "Volkswagen", *undoneSnap.Marca)
}

func TestRevertOfRevertChains(t *testing.T) {
	engine, vehicles, logs := newTestEngine()
	ctx := context.Background()
	actor := Actor{ID: 4, Username: "agente"}

	v, entry := seedEditEntry(t, vehicles, logs)

	_, err := engine.Revert(ctx, actor, entry.ID)
	require.NoError(t, err)

	// The revert entry is itself revertible and re-applies the edit.
	revertEntry := logs.latest()
	_, err = engine.Revert(ctx, actor, revertEntry.ID)
	require.NoError(t, err)

	got, err := vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Volkswagen", *got.Marca)
	assert.Equal(t, "repintado", *got.Observacoes)
}
