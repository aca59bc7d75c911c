package model

import (
	"encoding/json"
	"time"
)

// SnapshotSchemaVersion tags snapshots written by this build. Older
// entries may carry a lower version or none at all; the decoder below
// must keep accepting them.
const SnapshotSchemaVersion = 1

// VehicleSnapshot is the point-in-time copy of a vehicle's full field
// set stored in audit_logs.previousData / newData. It is an explicit
// struct rather than a loose map so new code cannot silently write
// fields the revert path does not know how to restore.
type VehicleSnapshot struct {
	SchemaVersion      int           `json:"schemaVersion"`
	PlacaOriginal      *string       `json:"placaOriginal"`
	PlacaOstentada     *string       `json:"placaOstentada"`
	Marca              *string       `json:"marca"`
	Modelo             *string       `json:"modelo"`
	Cor                *string       `json:"cor"`
	Ano                *string       `json:"ano"`
	AnoModelo          *string       `json:"anoModelo"`
	Chassi             *string       `json:"chassi"`
	Combustivel        *string       `json:"combustivel"`
	Municipio          *string       `json:"municipio"`
	UF                 *string       `json:"uf"`
	NumeroProcedimento *string       `json:"numeroProcedimento"`
	NumeroProcesso     *string       `json:"numeroProcesso"`
	Observacoes        *string       `json:"observacoes"`
	StatusPericia      StatusPericia `json:"statusPericia"`
	Devolvido          SimNao        `json:"devolvido"`
	DataDevolucao      *time.Time    `json:"dataDevolucao"`
	CreatedBy          *uint64       `json:"createdBy"`
}

// SnapshotOf captures the vehicle's current field values.
func SnapshotOf(v *Vehicle) *VehicleSnapshot {
	if v == nil {
		return nil
	}
	return &VehicleSnapshot{
		SchemaVersion:      SnapshotSchemaVersion,
		PlacaOriginal:      v.PlacaOriginal,
		PlacaOstentada:     v.PlacaOstentada,
		Marca:              v.Marca,
		Modelo:             v.Modelo,
		Cor:                v.Cor,
		Ano:                v.Ano,
		AnoModelo:          v.AnoModelo,
		Chassi:             v.Chassi,
		Combustivel:        v.Combustivel,
		Municipio:          v.Municipio,
		UF:                 v.UF,
		NumeroProcedimento: v.NumeroProcedimento,
		NumeroProcesso:     v.NumeroProcesso,
		Observacoes:        v.Observacoes,
		StatusPericia:      v.StatusPericia,
		Devolvido:          v.Devolvido,
		DataDevolucao:      v.DataDevolucao,
		CreatedBy:          v.CreatedBy,
	}
}

// Vehicle rebuilds a full vehicle record from the snapshot. The id and
// row timestamps are owned by the database and left zero.
func (s *VehicleSnapshot) Vehicle() *Vehicle {
	return &Vehicle{
		PlacaOriginal:      s.PlacaOriginal,
		PlacaOstentada:     s.PlacaOstentada,
		Marca:              s.Marca,
		Modelo:             s.Modelo,
		Cor:                s.Cor,
		Ano:                s.Ano,
		AnoModelo:          s.AnoModelo,
		Chassi:             s.Chassi,
		Combustivel:        s.Combustivel,
		Municipio:          s.Municipio,
		UF:                 s.UF,
		NumeroProcedimento: s.NumeroProcedimento,
		NumeroProcesso:     s.NumeroProcesso,
		Observacoes:        s.Observacoes,
		StatusPericia:      s.StatusPericia,
		Devolvido:          s.Devolvido,
		DataDevolucao:      s.DataDevolucao,
		CreatedBy:          s.CreatedBy,
	}
}

// DecodeVehicleSnapshot parses a stored snapshot blob defensively.
// Snapshots may have been written under an older field schema, so
// every field is coerced individually: unknown or missing enum values
// fall back to the column defaults (pendente / nao), unparsable dates
// become nil, and text fields that are not JSON strings become nil.
// Only a blob that is not a JSON object at all yields an error.
func DecodeVehicleSnapshot(raw json.RawMessage) (*VehicleSnapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	s := &VehicleSnapshot{
		StatusPericia: PericiaPendente,
		Devolvido:     Nao,
	}
	if v := asInt(fields["schemaVersion"]); v != nil {
		s.SchemaVersion = int(*v)
	}
	s.PlacaOriginal = asString(fields["placaOriginal"])
	s.PlacaOstentada = asString(fields["placaOstentada"])
	s.Marca = asString(fields["marca"])
	s.Modelo = asString(fields["modelo"])
	s.Cor = asString(fields["cor"])
	s.Ano = asString(fields["ano"])
	s.AnoModelo = asString(fields["anoModelo"])
	s.Chassi = asString(fields["chassi"])
	s.Combustivel = asString(fields["combustivel"])
	s.Municipio = asString(fields["municipio"])
	s.UF = asString(fields["uf"])
	s.NumeroProcedimento = asString(fields["numeroProcedimento"])
	s.NumeroProcesso = asString(fields["numeroProcesso"])
	s.Observacoes = asString(fields["observacoes"])

	if v := asString(fields["statusPericia"]); v != nil && ValidStatusPericia(StatusPericia(*v)) {
		s.StatusPericia = StatusPericia(*v)
	}
	if v := asString(fields["devolvido"]); v != nil && SimNao(*v) == Sim {
		s.Devolvido = Sim
	}
	s.DataDevolucao = asTime(fields["dataDevolucao"])
	if v := asInt(fields["createdBy"]); v != nil && *v >= 0 {
		id := uint64(*v)
		s.CreatedBy = &id
	}
	return s, nil
}

func asString(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func asInt(raw json.RawMessage) *int64 {
	if raw == nil {
		return nil
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// asTime accepts RFC3339 strings and the MySQL "2006-01-02 15:04:05"
// layout used by older snapshots. Anything else decodes to nil.
func asTime(raw json.RawMessage) *time.Time {
	v := asString(raw)
	if v == nil {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *v); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", *v); err == nil {
		return &t
	}
	return nil
}
