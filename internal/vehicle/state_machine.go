// Package vehicle holds the lifecycle rules for impounded vehicles:
// the return/inspection state machine and the boundary validation of
// plates and case-reference numbers. It operates on in-memory records
// only; persistence belongs to the repository layer.
package vehicle

import (
	"fmt"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/model"
)

// ApplyReturn marks the vehicle as returned to its owner at the given
// time. Returning implies the forensic inspection is over, so
// statusPericia is forced to "feita" regardless of its prior value.
// There is no precondition on the current devolvido value: calling
// twice yields the same state but advances dataDevolucao.
func ApplyReturn(v *model.Vehicle, now time.Time) {
	v.Devolvido = model.Sim
	t := now
	v.DataDevolucao = &t
	v.StatusPericia = model.PericiaFeita
}

// UndoReturn clears the returned flag and timestamp. It deliberately
// leaves statusPericia alone: undoing a return does not undo the
// inspection that the return implied.
func UndoReturn(v *model.Vehicle) {
	v.Devolvido = model.Nao
	v.DataDevolucao = nil
}

// SetInspectionStatus assigns one of the three perícia statuses. The
// returned flag is not coupled to it in this direction.
func SetInspectionStatus(v *model.Vehicle, status model.StatusPericia) error {
	if !model.ValidStatusPericia(status) {
		return fmt.Errorf("%w: statusPericia inválido: %q", ErrValidation, status)
	}
	v.StatusPericia = status
	return nil
}

// ActionForInspection maps an inspection status change to its audit
// action kind: moving back to pendente is a reversal, anything else
// marks the inspection.
func ActionForInspection(status model.StatusPericia) model.Action {
	if status == model.PericiaPendente {
		return model.ActionReverterPericia
	}
	return model.ActionMarcarPericia
}
