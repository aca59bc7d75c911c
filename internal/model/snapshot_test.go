package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestSnapshotRoundTrip(t *testing.T) {
	devolucao := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	createdBy := uint64(3)
	v := &Vehicle{
		ID:             42,
		PlacaOriginal:  strp("ABC1234"),
		PlacaOstentada: strp("XYZ9B77"),
		Marca:          strp("Fiat"),
		Observacoes:    strp("sem chave"),
		StatusPericia:  PericiaFeita,
		Devolvido:      Sim,
		DataDevolucao:  &devolucao,
		CreatedBy:      &createdBy,
	}

	raw, err := json.Marshal(SnapshotOf(v))
	require.NoError(t, err)

	s, err := DecodeVehicleSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, SnapshotSchemaVersion, s.SchemaVersion)
	assert.Equal(t, "ABC1234", *s.PlacaOriginal)
	assert.Equal(t, "XYZ9B77", *s.PlacaOstentada)
	assert.Equal(t, PericiaFeita, s.StatusPericia)
	assert.Equal(t, Sim, s.Devolvido)
	require.NotNil(t, s.DataDevolucao)
	assert.True(t, devolucao.Equal(*s.DataDevolucao))
	require.NotNil(t, s.CreatedBy)
	assert.Equal(t, uint64(3), *s.CreatedBy)

	restored := s.Vehicle()
	assert.Zero(t, restored.ID) // identity is owned by the database
	assert.Equal(t, "Fiat", *restored.Marca)
	assert.Equal(t, "sem chave", *restored.Observacoes)
}

func TestDecodeLegacySnapshotWithoutVersion(t *testing.T) {
	// Entries written before versioning: no schemaVersion, MySQL
	// datetime layout, unknown extra fields.
	raw := json.RawMessage(`{
		"placaOriginal": "DEF5678",
		"statusPericia": "sem_pericia",
		"devolvido": "sim",
		"dataDevolucao": "2023-11-02 09:15:00",
		"campoAntigo": "ignorado"
	}`)

	s, err := DecodeVehicleSnapshot(raw)
	require.NoError(t, err)
	assert.Zero(t, s.SchemaVersion)
	assert.Equal(t, "DEF5678", *s.PlacaOriginal)
	assert.Equal(t, PericiaSem, s.StatusPericia)
	assert.Equal(t, Sim, s.Devolvido)
	require.NotNil(t, s.DataDevolucao)
	assert.Equal(t, 2023, s.DataDevolucao.Year())
}

func TestDecodeSnapshotCoercesBadFields(t *testing.T) {
	raw := json.RawMessage(`{
		"marca": 12345,
		"statusPericia": "desconhecido",
		"devolvido": "talvez",
		"dataDevolucao": "ontem",
		"createdBy": "x"
	}`)

	s, err := DecodeVehicleSnapshot(raw)
	require.NoError(t, err)
	assert.Nil(t, s.Marca)
	assert.Equal(t, PericiaPendente, s.StatusPericia) // column default
	assert.Equal(t, Nao, s.Devolvido)
	assert.Nil(t, s.DataDevolucao)
	assert.Nil(t, s.CreatedBy)
}

func TestDecodeSnapshotRejectsNonObject(t *testing.T) {
	_, err := DecodeVehicleSnapshot(json.RawMessage(`"not an object"`))
	assert.Error(t, err)

	_, err = DecodeVehicleSnapshot(json.RawMessage(`[1,2,3]`))
	assert.Error(t, err)
}

func TestSnapshotOfNil(t *testing.T) {
	assert.Nil(t, SnapshotOf(nil))
}
