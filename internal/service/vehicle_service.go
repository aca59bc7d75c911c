// Package service exposes the caller-facing vehicle operations: each
// one validates input, applies the lifecycle rules through the record
// store, and pairs the mutation with exactly one audit entry. The
// HTTP layer is a thin translation on top of this package.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/audit"
	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/repository"
	"github.com/iliyamo/vehicle-yard/internal/vehicle"
)

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrVehicleNotFound)
}

// ErrPlacaEmUso signals that another non-deleted vehicle already
// holds the requested placaOriginal.
var ErrPlacaEmUso = errors.New("já existe um veículo com esta placa original")

// VehicleStore extends the audit store contract with the plate lookup
// used by the advisory uniqueness check.
type VehicleStore interface {
	audit.VehicleStore
	FindByPlate(ctx context.Context, placa string, excludeID uint64) (*model.Vehicle, error)
}

// VehicleService orchestrates vehicle mutations. All operations take
// an authenticated actor; how authentication happened is not this
// package's concern.
type VehicleService struct {
	Vehicles VehicleStore
	Recorder *audit.Recorder

	// Now is the clock for return timestamps; defaults to time.Now.
	Now func() time.Time
}

func NewVehicleService(vehicles VehicleStore, rec *audit.Recorder) *VehicleService {
	return &VehicleService{Vehicles: vehicles, Recorder: rec}
}

func (s *VehicleService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// VehicleInput carries the writable vehicle fields. Nil pointers mean
// "leave untouched" on update and "use the default" on create; an
// empty string clears a nullable text field.
type VehicleInput struct {
	PlacaOriginal      *string              `json:"placaOriginal"`
	PlacaOstentada     *string              `json:"placaOstentada"`
	Marca              *string              `json:"marca"`
	Modelo             *string              `json:"modelo"`
	Cor                *string              `json:"cor"`
	Ano                *string              `json:"ano"`
	AnoModelo          *string              `json:"anoModelo"`
	Chassi             *string              `json:"chassi"`
	Combustivel        *string              `json:"combustivel"`
	Municipio          *string              `json:"municipio"`
	UF                 *string              `json:"uf"`
	NumeroProcedimento *string              `json:"numeroProcedimento"`
	NumeroProcesso     *string              `json:"numeroProcesso"`
	Observacoes        *string              `json:"observacoes"`
	StatusPericia      *model.StatusPericia `json:"statusPericia"`
	Devolvido          *model.SimNao        `json:"devolvido"`
	DataDevolucao      *time.Time           `json:"dataDevolucao"`
}

// textField normalizes an optional text input: untouched when nil,
// cleared to NULL when empty.
func textField(dst **string, in *string) {
	if in == nil {
		return
	}
	if *in == "" {
		*dst = nil
		return
	}
	v := *in
	*dst = &v
}

// applyInput validates the supplied fields and merges them onto v.
// Any validation failure aborts before v is touched, so a rejected
// operation is never partially applied.
func (s *VehicleService) applyInput(v *model.Vehicle, in *VehicleInput) error {
	var placaOriginal, placaOstentada *string
	if in.PlacaOriginal != nil && *in.PlacaOriginal != "" {
		p := vehicle.NormalizePlaca(*in.PlacaOriginal)
		if err := vehicle.ValidatePlaca(p); err != nil {
			return err
		}
		placaOriginal = &p
	}
	if in.PlacaOstentada != nil && *in.PlacaOstentada != "" {
		p := vehicle.NormalizePlaca(*in.PlacaOstentada)
		if err := vehicle.ValidatePlaca(p); err != nil {
			return err
		}
		placaOstentada = &p
	}
	if in.NumeroProcedimento != nil && *in.NumeroProcedimento != "" {
		if err := vehicle.ValidateNumeroProcedimento(*in.NumeroProcedimento); err != nil {
			return err
		}
	}
	if in.NumeroProcesso != nil && *in.NumeroProcesso != "" {
		if err := vehicle.ValidateNumeroProcesso(*in.NumeroProcesso); err != nil {
			return err
		}
	}
	if in.Observacoes != nil {
		if err := vehicle.ValidateObservacoes(*in.Observacoes); err != nil {
			return err
		}
	}
	if in.StatusPericia != nil && !model.ValidStatusPericia(*in.StatusPericia) {
		return fmt.Errorf("%w: statusPericia inválido: %q", vehicle.ErrValidation, *in.StatusPericia)
	}

	if in.PlacaOriginal != nil {
		v.PlacaOriginal = placaOriginal
	}
	if in.PlacaOstentada != nil {
		v.PlacaOstentada = placaOstentada
	}
	textField(&v.Marca, in.Marca)
	textField(&v.Modelo, in.Modelo)
	textField(&v.Cor, in.Cor)
	textField(&v.Ano, in.Ano)
	textField(&v.AnoModelo, in.AnoModelo)
	textField(&v.Chassi, in.Chassi)
	textField(&v.Combustivel, in.Combustivel)
	textField(&v.Municipio, in.Municipio)
	textField(&v.UF, in.UF)
	textField(&v.NumeroProcedimento, in.NumeroProcedimento)
	textField(&v.NumeroProcesso, in.NumeroProcesso)
	textField(&v.Observacoes, in.Observacoes)
	if in.StatusPericia != nil {
		v.StatusPericia = *in.StatusPericia
	}
	if in.Devolvido != nil {
		if *in.Devolvido == model.Sim {
			v.Devolvido = model.Sim
			if in.DataDevolucao != nil {
				v.DataDevolucao = in.DataDevolucao
			} else if v.DataDevolucao == nil {
				t := s.now()
				v.DataDevolucao = &t
			}
		} else {
			v.Devolvido = model.Nao
			v.DataDevolucao = nil
		}
	}
	return nil
}

// checkPlateUnique runs the advisory uniqueness check on
// placaOriginal. It is a read-then-write check without a storage
// constraint behind it, so two concurrent writers can still slip
// through; the window is accepted and documented rather than closed.
func (s *VehicleService) checkPlateUnique(ctx context.Context, v *model.Vehicle, excludeID uint64) error {
	if v.PlacaOriginal == nil || *v.PlacaOriginal == "" {
		return nil
	}
	existing, err := s.Vehicles.FindByPlate(ctx, *v.PlacaOriginal, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrPlacaEmUso
	}
	return nil
}

// Create registers a new vehicle and records the creation.
func (s *VehicleService) Create(ctx context.Context, actor audit.Actor, in *VehicleInput) (*model.Vehicle, error) {
	v := &model.Vehicle{
		StatusPericia: model.PericiaPendente,
		Devolvido:     model.Nao,
		CreatedBy:     &actor.ID,
	}
	if err := s.applyInput(v, in); err != nil {
		return nil, err
	}
	if err := s.checkPlateUnique(ctx, v, 0); err != nil {
		return nil, err
	}
	if err := s.Vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	s.Recorder.Record(ctx, actor, model.ActionCriarVeiculo, model.EntityVehicle, &v.ID,
		audit.DescribeCreate(v), nil, model.SnapshotOf(v))
	return v, nil
}

// Update edits an existing vehicle. A missing id yields (nil, nil):
// callers must check for absence explicitly.
func (s *VehicleService) Update(ctx context.Context, actor audit.Actor, id uint64, in *VehicleInput) (*model.Vehicle, error) {
	v, err := s.getOrNil(ctx, id)
	if v == nil || err != nil {
		return nil, err
	}
	prev := model.SnapshotOf(v)
	if err := s.applyInput(v, in); err != nil {
		return nil, err
	}
	if err := s.checkPlateUnique(ctx, v, id); err != nil {
		return nil, err
	}
	if err := s.Vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	s.Recorder.Record(ctx, actor, model.ActionEditarVeiculo, model.EntityVehicle, &v.ID,
		audit.DescribeEdit(v), prev, model.SnapshotOf(v))
	return v, nil
}

// Delete removes a vehicle. Deleting an absent id reports false
// without error.
func (s *VehicleService) Delete(ctx context.Context, actor audit.Actor, id uint64) (bool, error) {
	v, err := s.getOrNil(ctx, id)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}
	prev := model.SnapshotOf(v)
	ok, err := s.Vehicles.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.Recorder.Record(ctx, actor, model.ActionExcluirVeiculo, model.EntityVehicle, &id,
			audit.DescribeDelete(v), prev, nil)
	}
	return ok, nil
}

// MarkAsReturned releases the vehicle back to its owner, which also
// forces the inspection to "feita".
func (s *VehicleService) MarkAsReturned(ctx context.Context, actor audit.Actor, id uint64) (*model.Vehicle, error) {
	v, err := s.getOrNil(ctx, id)
	if v == nil || err != nil {
		return nil, err
	}
	prev := model.SnapshotOf(v)
	vehicle.ApplyReturn(v, s.now())
	if err := s.Vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	s.Recorder.Record(ctx, actor, model.ActionMarcarDevolvido, model.EntityVehicle, &v.ID,
		audit.DescribeReturn(v), prev, model.SnapshotOf(v))
	return v, nil
}

// UndoReturn clears the returned state without touching the
// inspection status.
func (s *VehicleService) UndoReturn(ctx context.Context, actor audit.Actor, id uint64) (*model.Vehicle, error) {
	v, err := s.getOrNil(ctx, id)
	if v == nil || err != nil {
		return nil, err
	}
	prev := model.SnapshotOf(v)
	vehicle.UndoReturn(v)
	if err := s.Vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	s.Recorder.Record(ctx, actor, model.ActionDesfazerDevolucao, model.EntityVehicle, &v.ID,
		audit.DescribeUndoReturn(v), prev, model.SnapshotOf(v))
	return v, nil
}

// UpdateInspectionStatus sets the perícia status directly.
func (s *VehicleService) UpdateInspectionStatus(ctx context.Context, actor audit.Actor, id uint64, status model.StatusPericia) (*model.Vehicle, error) {
	v, err := s.getOrNil(ctx, id)
	if v == nil || err != nil {
		return nil, err
	}
	prev := model.SnapshotOf(v)
	if err := vehicle.SetInspectionStatus(v, status); err != nil {
		return nil, err
	}
	if err := s.Vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	s.Recorder.Record(ctx, actor, vehicle.ActionForInspection(status), model.EntityVehicle, &v.ID,
		audit.DescribeInspection(v, status), prev, model.SnapshotOf(v))
	return v, nil
}

// RecordLogin writes the login audit entry. Logins are record-only:
// the revert engine refuses them by definition.
func (s *VehicleService) RecordLogin(ctx context.Context, actor audit.Actor) {
	s.Recorder.Record(ctx, actor, model.ActionLogin, model.EntityUser, &actor.ID,
		audit.DescribeLogin(actor.Username), nil, nil)
}

// getOrNil translates the repository's not-found sentinel into a nil
// vehicle, the silent-absence contract of the mutating operations.
func (s *VehicleService) getOrNil(ctx context.Context, id uint64) (*model.Vehicle, error) {
	v, err := s.Vehicles.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}
