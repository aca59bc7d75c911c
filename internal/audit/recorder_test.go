package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-yard/internal/model"
)

func TestRecordWritesEntryAndPublishes(t *testing.T) {
	logs := newFakeLogs()
	pub := &fakePublisher{}
	rec := NewRecorder(logs, pub)
	ctx := context.Background()

	v := &model.Vehicle{ID: 10, PlacaOriginal: str("ABC1234"), Marca: str("Fiat"), Modelo: str("Uno"),
		StatusPericia: model.PericiaPendente, Devolvido: model.Nao}
	id := v.ID

	e := rec.Record(ctx, Actor{ID: 1, Username: "agente"}, model.ActionCriarVeiculo,
		model.EntityVehicle, &id, DescribeCreate(v), nil, model.SnapshotOf(v))
	require.NotNil(t, e)
	assert.NotZero(t, e.ID)
	assert.Equal(t, model.Nao, e.Reverted)
	assert.Nil(t, e.PreviousData)
	require.NotNil(t, e.NewData)

	snap, err := model.DecodeVehicleSnapshot(e.NewData)
	require.NoError(t, err)
	assert.Equal(t, "ABC1234", *snap.PlacaOriginal)
	assert.Equal(t, model.SnapshotSchemaVersion, snap.SchemaVersion)

	require.Len(t, pub.events, 1)
	assert.Equal(t, e.ID, pub.events[0].LogID)
	assert.Equal(t, "criar_veiculo", pub.events[0].Action)
}

func TestRecordSwallowsStoreFailure(t *testing.T) {
	logs := newFakeLogs()
	logs.failCreate = true
	rec := NewRecorder(logs, nil)

	e := rec.Record(context.Background(), Actor{ID: 1, Username: "agente"},
		model.ActionLogin, model.EntityUser, nil, DescribeLogin("agente"), nil, nil)
	assert.Nil(t, e)
}

func TestDescribeVehicleFallbacks(t *testing.T) {
	full := &model.Vehicle{PlacaOriginal: str("ABC1234"), Marca: str("Fiat"), Modelo: str("Uno")}
	assert.Equal(t, "Veículo ABC1234 (Fiat Uno) cadastrado", DescribeCreate(full))

	ostentada := &model.Vehicle{PlacaOstentada: str("FAK3E88")}
	assert.Equal(t, "Veículo FAK3E88 excluído", DescribeDelete(ostentada))

	bare := &model.Vehicle{}
	assert.Equal(t, "Veículo sem placa editado", DescribeEdit(bare))
}
