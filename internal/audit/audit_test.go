package audit

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/queue"
	"github.com/iliyamo/vehicle-yard/internal/repository"
)

// In-memory stores backing the recorder and engine tests.

type fakeVehicles struct {
	mu       sync.Mutex
	vehicles map[uint64]*model.Vehicle
	nextID   uint64

	failUpdate bool
	failCreate bool
}

func newFakeVehicles() *fakeVehicles {
	return &fakeVehicles{vehicles: map[uint64]*model.Vehicle{}}
}

func (f *fakeVehicles) Create(ctx context.Context, v *model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("create failed")
	}
	f.nextID++
	v.ID = f.nextID
	cp := *v
	f.vehicles[v.ID] = &cp
	return nil
}

func (f *fakeVehicles) Update(ctx context.Context, v *model.Vehicle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate {
		return errors.New("update failed")
	}
	if _, ok := f.vehicles[v.ID]; !ok {
		return repository.ErrVehicleNotFound
	}
	cp := *v
	f.vehicles[v.ID] = &cp
	return nil
}

func (f *fakeVehicles) Delete(ctx context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.vehicles[id]; !ok {
		return false, nil
	}
	delete(f.vehicles, id)
	return true, nil
}

func (f *fakeVehicles) GetByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.vehicles[id]
	if !ok {
		return nil, repository.ErrVehicleNotFound
	}
	cp := *v
	return &cp, nil
}

type fakeLogs struct {
	mu      sync.Mutex
	entries map[uint64]*model.AuditLog
	nextID  uint64

	failCreate bool
}

func newFakeLogs() *fakeLogs {
	return &fakeLogs{entries: map[uint64]*model.AuditLog{}}
}

func (f *fakeLogs) Create(ctx context.Context, e *model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("insert failed")
	}
	f.nextID++
	e.ID = f.nextID
	e.Reverted = model.Nao
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeLogs) GetByID(ctx context.Context, id uint64) (*model.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok {
		return nil, repository.ErrLogNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeLogs) MarkReverted(ctx context.Context, id, actorID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.Reverted == model.Sim {
		return repository.ErrAlreadyReverted
	}
	e.Reverted = model.Sim
	e.RevertedBy = &actorID
	return nil
}

func (f *fakeLogs) ClearReverted(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[id]; ok {
		e.Reverted = model.Nao
		e.RevertedAt = nil
		e.RevertedBy = nil
	}
	return nil
}

func (f *fakeLogs) latest() *model.AuditLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[f.nextID]
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.AuditRecordedEvent
}

func (f *fakePublisher) PublishAuditRecorded(ctx context.Context, ev queue.AuditRecordedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func str(s string) *string { return &s }
