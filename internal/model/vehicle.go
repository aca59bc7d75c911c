package model

import "time"

// StatusPericia is the forensic-inspection status of an impounded
// vehicle. The string values are persisted verbatim in the
// `vehicles.statusPericia` enum column, so they must never change.
type StatusPericia string

const (
	PericiaPendente StatusPericia = "pendente"
	PericiaSem      StatusPericia = "sem_pericia"
	PericiaFeita    StatusPericia = "feita"
)

// ValidStatusPericia reports whether s is one of the three known
// inspection statuses.
func ValidStatusPericia(s StatusPericia) bool {
	switch s {
	case PericiaPendente, PericiaSem, PericiaFeita:
		return true
	}
	return false
}

// SimNao is the two-valued enum used for the vehicle `devolvido`
// column and the audit-log `reverted` column.
type SimNao string

const (
	Sim SimNao = "sim"
	Nao SimNao = "nao"
)

// Vehicle mirrors the `vehicles` table. A vehicle carries two
// independent plates: PlacaOriginal is the real one and
// PlacaOstentada the fraudulent plate displayed on cloned vehicles.
// Nullable varchar columns map to *string so that NULL and empty
// string stay distinguishable.
//
// Invariant: DataDevolucao is non-nil iff Devolvido == Sim.
type Vehicle struct {
	ID                 uint64        `json:"id"`
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
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
	CreatedBy          *uint64       `json:"createdBy"`
}

// Label returns a short human identifier for the vehicle used in
// audit descriptions: the original plate when present, otherwise the
// displayed plate, otherwise the record id is the caller's problem.
func (v *Vehicle) Label() string {
	if v.PlacaOriginal != nil && *v.PlacaOriginal != "" {
		return *v.PlacaOriginal
	}
	if v.PlacaOstentada != nil && *v.PlacaOstentada != "" {
		return *v.PlacaOstentada
	}
	return "sem placa"
}

// VehicleStats aggregates dashboard counters over the vehicles table.
type VehicleStats struct {
	TotalGeral        int64 `json:"totalGeral"`
	TotalNoPatio      int64 `json:"totalNoPatio"`
	TotalDevolvidos   int64 `json:"totalDevolvidos"`
	PericiasPendentes int64 `json:"periciasPendentes"`
	PericiasFeitas    int64 `json:"periciasFeitas"`
	SemPericia        int64 `json:"semPericia"`
}
