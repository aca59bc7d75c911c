package vehicle

import (
	"testing"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/model"
)

func TestApplyReturnForcesInspectionDone(t *testing.T) {
	now := time.Now().UTC()
	for _, prior := range []model.StatusPericia{model.PericiaPendente, model.PericiaSem, model.PericiaFeita} {
		v := &model.Vehicle{StatusPericia: prior, Devolvido: model.Nao}
		ApplyReturn(v, now)
		if v.Devolvido != model.Sim {
			t.Fatalf("prior=%s: expected devolvido=sim, got %s", prior, v.Devolvido)
		}
		if v.StatusPericia != model.PericiaFeita {
			t.Fatalf("prior=%s: expected statusPericia=feita, got %s", prior, v.StatusPericia)
		}
		if v.DataDevolucao == nil || !v.DataDevolucao.Equal(now) {
			t.Fatalf("prior=%s: expected dataDevolucao=%v, got %v", prior, now, v.DataDevolucao)
		}
	}
}

func TestApplyReturnTwiceAdvancesTimestamp(t *testing.T) {
	v := &model.Vehicle{StatusPericia: model.PericiaPendente, Devolvido: model.Nao}
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)
	ApplyReturn(v, first)
	ApplyReturn(v, second)
	if v.Devolvido != model.Sim || v.StatusPericia != model.PericiaFeita {
		t.Fatalf("unexpected state after double return: %+v", v)
	}
	if !v.DataDevolucao.Equal(second) {
		t.Fatalf("expected dataDevolucao advanced to %v, got %v", second, v.DataDevolucao)
	}
}

func TestUndoReturnLeavesInspectionAlone(t *testing.T) {
	v := &model.Vehicle{StatusPericia: model.PericiaSem, Devolvido: model.Nao}
	ApplyReturn(v, time.Now().UTC())
	// the return step forced feita; undo must not reset it
	UndoReturn(v)
	if v.Devolvido != model.Nao {
		t.Fatalf("expected devolvido=nao, got %s", v.Devolvido)
	}
	if v.DataDevolucao != nil {
		t.Fatalf("expected dataDevolucao=nil, got %v", v.DataDevolucao)
	}
	if v.StatusPericia != model.PericiaFeita {
		t.Fatalf("expected statusPericia to stay feita, got %s", v.StatusPericia)
	}
}

func TestSetInspectionStatus(t *testing.T) {
	v := &model.Vehicle{StatusPericia: model.PericiaPendente, Devolvido: model.Sim}
	if err := SetInspectionStatus(v, model.PericiaSem); err != nil {
		t.Fatalf("SetInspectionStatus: %v", err)
	}
	if v.StatusPericia != model.PericiaSem {
		t.Fatalf("expected sem_pericia, got %s", v.StatusPericia)
	}
	if v.Devolvido != model.Sim {
		t.Fatalf("devolvido must not be touched, got %s", v.Devolvido)
	}
	if err := SetInspectionStatus(v, model.StatusPericia("invalida")); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestActionForInspection(t *testing.T) {
	if got := ActionForInspection(model.PericiaPendente); got != model.ActionReverterPericia {
		t.Fatalf("pendente: expected reverter_pericia, got %s", got)
	}
	if got := ActionForInspection(model.PericiaFeita); got != model.ActionMarcarPericia {
		t.Fatalf("feita: expected marcar_pericia, got %s", got)
	}
}
