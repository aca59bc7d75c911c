package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/vehicle-yard/internal/model"
)

func newAuditMock(t *testing.T) (*AuditLogRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAuditLogRepo(db), mock
}

var auditCols = []string{
	"id", "userId", "username", "action", "entityType", "entityId",
	"description", "previousData", "newData", "reverted", "revertedAt", "revertedBy", "createdAt",
}

func TestAuditCreatePopulatesID(t *testing.T) {
	repo, mock := newAuditMock(t)

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(17, 1))

	entityID := uint64(3)
	e := &model.AuditLog{
		UserID:      1,
		Username:    "agente",
		Action:      model.ActionCriarVeiculo,
		EntityType:  model.EntityVehicle,
		EntityID:    &entityID,
		Description: "Veículo ABC1234 cadastrado",
		NewData:     []byte(`{"placaOriginal":"ABC1234"}`),
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, uint64(17), e.ID)
	assert.Equal(t, model.Nao, e.Reverted)
	assert.False(t, e.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditGetByIDNotFound(t *testing.T) {
	repo, mock := newAuditMock(t)

	mock.ExpectQuery("SELECT .+ FROM audit_logs WHERE id = ?").
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrLogNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditGetByIDDecodesSnapshots(t *testing.T) {
	repo, mock := newAuditMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM audit_logs WHERE id = ?").
		WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows(auditCols).AddRow(
			int64(4), int64(1), "agente", "editar_veiculo", "vehicle", int64(3),
			"Veículo ABC1234 editado", `{"marca":"Fiat"}`, `{"marca":"VW"}`, "nao", nil, nil, now,
		))

	e, err := repo.GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, model.ActionEditarVeiculo, e.Action)
	require.NotNil(t, e.EntityID)
	assert.Equal(t, uint64(3), *e.EntityID)
	assert.JSONEq(t, `{"marca":"Fiat"}`, string(e.PreviousData))
	assert.JSONEq(t, `{"marca":"VW"}`, string(e.NewData))
	assert.Equal(t, model.Nao, e.Reverted)
	assert.Nil(t, e.RevertedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// MarkReverted must only claim entries still at reverted='nao': of two
// concurrent calls exactly one sees an affected row.
func TestMarkRevertedClaimsOnce(t *testing.T) {
	repo, mock := newAuditMock(t)

	mock.ExpectExec("UPDATE audit_logs\\s+SET reverted = 'sim'.+WHERE id = \\? AND reverted = 'nao'").
		WithArgs(uint64(2), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkReverted(context.Background(), 8, 2))

	mock.ExpectExec("UPDATE audit_logs\\s+SET reverted = 'sim'.+WHERE id = \\? AND reverted = 'nao'").
		WithArgs(uint64(2), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.MarkReverted(context.Background(), 8, 2)
	assert.ErrorIs(t, err, ErrAlreadyReverted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearRevertedReleasesClaim(t *testing.T) {
	repo, mock := newAuditMock(t)

	mock.ExpectExec("UPDATE audit_logs\\s+SET reverted = 'nao', revertedAt = NULL, revertedBy = NULL\\s+WHERE id = \\? AND reverted = 'sim'").
		WithArgs(uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.ClearReverted(context.Background(), 8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditListNewestFirst(t *testing.T) {
	repo, mock := newAuditMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM audit_logs WHERE .*action = \\?").
		WithArgs(model.ActionLogin).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	mock.ExpectQuery("SELECT .+ FROM audit_logs WHERE .*action = \\? ORDER BY createdAt DESC, id DESC LIMIT \\? OFFSET \\?").
		WithArgs(model.ActionLogin, 20, 0).
		WillReturnRows(sqlmock.NewRows(auditCols).
			AddRow(int64(2), int64(1), "agente", "login", "user", int64(1), "Usuário agente efetuou login", nil, nil, "nao", nil, nil, now).
			AddRow(int64(1), int64(1), "agente", "login", "user", int64(1), "Usuário agente efetuou login", nil, nil, "nao", nil, nil, now.Add(-time.Hour)))

	out, total, err := repo.List(context.Background(), AuditLogQuery{Action: model.ActionLogin})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(2), out[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
