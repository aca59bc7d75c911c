package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/model"
)

// AuditLogRepo encapsulates all queries against the `audit_logs`
// table. Entries are insert-only except for MarkReverted, which flips
// the reverted flag exactly once.
type AuditLogRepo struct {
	db *sql.DB
}

// NewAuditLogRepo constructs an AuditLogRepo with the provided DB handle.
func NewAuditLogRepo(db *sql.DB) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

const auditColumns = "id, userId, username, action, entityType, entityId, description, previousData, newData, reverted, revertedAt, revertedBy, createdAt"

func scanAuditLog(row interface{ Scan(...any) error }) (*model.AuditLog, error) {
	var (
		e          model.AuditLog
		entityID   sql.NullInt64
		prev, next sql.NullString
		revertedAt sql.NullTime
		revertedBy sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Username, &e.Action, &e.EntityType, &entityID,
		&e.Description, &prev, &next, &e.Reverted, &revertedAt, &revertedBy, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if entityID.Valid {
		id := uint64(entityID.Int64)
		e.EntityID = &id
	}
	if prev.Valid {
		e.PreviousData = json.RawMessage(prev.String)
	}
	if next.Valid {
		e.NewData = json.RawMessage(next.String)
	}
	if revertedAt.Valid {
		t := revertedAt.Time
		e.RevertedAt = &t
	}
	if revertedBy.Valid {
		id := uint64(revertedBy.Int64)
		e.RevertedBy = &id
	}
	return &e, nil
}

// Create inserts one audit entry and populates its ID and createdAt.
func (r *AuditLogRepo) Create(ctx context.Context, e *model.AuditLog) error {
	const q = `INSERT INTO audit_logs
		(userId, username, action, entityType, entityId, description, previousData, newData, reverted)
		VALUES (?,?,?,?,?,?,?,?,'nao')`
	var prev, next any
	if e.PreviousData != nil {
		prev = string(e.PreviousData)
	}
	if e.NewData != nil {
		next = string(e.NewData)
	}
	res, err := r.db.ExecContext(ctx, q,
		e.UserID, e.Username, e.Action, e.EntityType, e.EntityID, e.Description, prev, next)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	e.Reverted = model.Nao
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}

// GetByID fetches one entry, returning ErrLogNotFound when absent.
func (r *AuditLogRepo) GetByID(ctx context.Context, id uint64) (*model.AuditLog, error) {
	const q = "SELECT " + auditColumns + " FROM audit_logs WHERE id = ?"
	e, err := scanAuditLog(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLogNotFound
		}
		return nil, err
	}
	return e, nil
}

// MarkReverted flips the entry's reverted flag. The WHERE clause only
// matches entries still at reverted='nao', so of two concurrent revert
// calls exactly one sees an affected row; the other gets
// ErrAlreadyReverted and must not apply the inverse operation.
func (r *AuditLogRepo) MarkReverted(ctx context.Context, id, actorID uint64) error {
	const q = `UPDATE audit_logs
		SET reverted = 'sim', revertedAt = NOW(), revertedBy = ?
		WHERE id = ? AND reverted = 'nao'`
	res, err := r.db.ExecContext(ctx, q, actorID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyReverted
	}
	return nil
}

// ClearReverted undoes MarkReverted. It exists only as compensation
// for the claim-then-apply ordering in the revert engine: when the
// inverse operation fails after the entry was claimed, the flag is
// put back so the entry stays revertible.
func (r *AuditLogRepo) ClearReverted(ctx context.Context, id uint64) error {
	const q = `UPDATE audit_logs
		SET reverted = 'nao', revertedAt = NULL, revertedBy = NULL
		WHERE id = ? AND reverted = 'sim'`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// AuditLogQuery narrows and paginates log listings.
type AuditLogQuery struct {
	UserID     uint64
	Action     model.Action
	EntityType model.EntityType
	EntityID   uint64
	DataInicio *time.Time
	DataFim    *time.Time
	Page       int
	PageSize   int
}

// List returns one page of audit entries, newest first, plus the
// total count for the same filters.
func (r *AuditLogRepo) List(ctx context.Context, q AuditLogQuery) ([]*model.AuditLog, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	where := []string{}
	args := []any{}
	if q.UserID != 0 {
		where = append(where, "userId = ?")
		args = append(args, q.UserID)
	}
	if q.Action != "" {
		where = append(where, "action = ?")
		args = append(args, q.Action)
	}
	if q.EntityType != "" {
		where = append(where, "entityType = ?")
		args = append(args, q.EntityType)
	}
	if q.EntityID != 0 {
		where = append(where, "entityId = ?")
		args = append(args, q.EntityID)
	}
	if q.DataInicio != nil {
		where = append(where, "createdAt >= ?")
		args = append(args, *q.DataInicio)
	}
	if q.DataFim != nil {
		where = append(where, "createdAt <= ?")
		args = append(args, *q.DataFim)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSQL := "SELECT " + auditColumns + " FROM audit_logs WHERE " + cond +
		" ORDER BY createdAt DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.AuditLog, 0, q.PageSize)
	for rows.Next() {
		e, err := scanAuditLog(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
