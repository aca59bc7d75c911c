package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/model"
)

// VehicleRepo encapsulates all queries against the `vehicles` table.
// It depends on an explicit *sql.DB handle injected at startup; a
// broken connection surfaces as an error from each call instead of
// being collapsed into empty results.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo constructs a VehicleRepo with the provided DB handle.
func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{db: db}
}

const vehicleColumns = "id, placaOriginal, placaOstentada, marca, modelo, cor, ano, anoModelo, chassi, combustivel, municipio, uf, numeroProcedimento, numeroProcesso, observacoes, statusPericia, devolvido, dataDevolucao, createdAt, updatedAt, createdBy"

// scanVehicle reads one row in vehicleColumns order.
func scanVehicle(row interface{ Scan(...any) error }) (*model.Vehicle, error) {
	var (
		v             model.Vehicle
		placaOriginal, placaOstentada, marca, modelo, cor sql.NullString
		ano, anoModelo, chassi, combustivel               sql.NullString
		municipio, uf, procedimento, processo, obs        sql.NullString
		dataDevolucao sql.NullTime
		createdBy     sql.NullInt64
	)
	err := row.Scan(&v.ID, &placaOriginal, &placaOstentada, &marca, &modelo, &cor,
		&ano, &anoModelo, &chassi, &combustivel, &municipio, &uf,
		&procedimento, &processo, &obs, &v.StatusPericia, &v.Devolvido,
		&dataDevolucao, &v.CreatedAt, &v.UpdatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	v.PlacaOriginal = nullStr(placaOriginal)
	v.PlacaOstentada = nullStr(placaOstentada)
	v.Marca = nullStr(marca)
	v.Modelo = nullStr(modelo)
	v.Cor = nullStr(cor)
	v.Ano = nullStr(ano)
	v.AnoModelo = nullStr(anoModelo)
	v.Chassi = nullStr(chassi)
	v.Combustivel = nullStr(combustivel)
	v.Municipio = nullStr(municipio)
	v.UF = nullStr(uf)
	v.NumeroProcedimento = nullStr(procedimento)
	v.NumeroProcesso = nullStr(processo)
	v.Observacoes = nullStr(obs)
	if dataDevolucao.Valid {
		t := dataDevolucao.Time
		v.DataDevolucao = &t
	}
	if createdBy.Valid {
		id := uint64(createdBy.Int64)
		v.CreatedBy = &id
	}
	return &v, nil
}

func nullStr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Create inserts a new vehicle. On success the ID field is populated
// with the auto-generated value and the row is re-selected so callers
// receive the DB-assigned timestamps.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	const q = `INSERT INTO vehicles
		(placaOriginal, placaOstentada, marca, modelo, cor, ano, anoModelo, chassi, combustivel, municipio, uf,
		 numeroProcedimento, numeroProcesso, observacoes, statusPericia, devolvido, dataDevolucao, createdBy)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		v.PlacaOriginal, v.PlacaOstentada, v.Marca, v.Modelo, v.Cor, v.Ano, v.AnoModelo,
		v.Chassi, v.Combustivel, v.Municipio, v.UF, v.NumeroProcedimento, v.NumeroProcesso,
		v.Observacoes, v.StatusPericia, v.Devolvido, v.DataDevolucao, v.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)

	got, err := r.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = *got
	return nil
}

// GetByID fetches a vehicle by id, returning ErrVehicleNotFound when
// no row exists.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (*model.Vehicle, error) {
	const q = "SELECT " + vehicleColumns + " FROM vehicles WHERE id = ?"
	v, err := scanVehicle(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return v, nil
}

// Update overwrites every mutable column of the row from the given
// record. Full-field writes keep the revert path honest: restoring a
// snapshot replaces the whole field set, never a merge. updatedAt is
// touched by the statement itself.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	const q = `UPDATE vehicles SET
		placaOriginal = ?, placaOstentada = ?, marca = ?, modelo = ?, cor = ?, ano = ?, anoModelo = ?,
		chassi = ?, combustivel = ?, municipio = ?, uf = ?, numeroProcedimento = ?, numeroProcesso = ?,
		observacoes = ?, statusPericia = ?, devolvido = ?, dataDevolucao = ?, updatedAt = CURRENT_TIMESTAMP
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		v.PlacaOriginal, v.PlacaOstentada, v.Marca, v.Modelo, v.Cor, v.Ano, v.AnoModelo,
		v.Chassi, v.Combustivel, v.Municipio, v.UF, v.NumeroProcedimento, v.NumeroProcesso,
		v.Observacoes, v.StatusPericia, v.Devolvido, v.DataDevolucao, v.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 affected rows for a no-op update as well,
		// so confirm the row is really gone before reporting not-found.
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return err
		}
	}
	got, err := r.GetByID(ctx, v.ID)
	if err != nil {
		return err
	}
	*v = *got
	return nil
}

// Delete removes a vehicle row. It reports whether a row was deleted;
// deleting an absent id is not an error.
func (r *VehicleRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM vehicles WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindByPlate returns the first vehicle whose placaOriginal equals the
// given plate, excluding excludeID (pass 0 to exclude nothing). A nil
// vehicle with nil error means no match. This backs the advisory
// uniqueness check; it is read-then-write and therefore racy by
// design (documented in the service layer).
func (r *VehicleRepo) FindByPlate(ctx context.Context, placa string, excludeID uint64) (*model.Vehicle, error) {
	q := "SELECT " + vehicleColumns + " FROM vehicles WHERE placaOriginal = ?"
	args := []any{placa}
	if excludeID != 0 {
		q += " AND id <> ?"
		args = append(args, excludeID)
	}
	q += " LIMIT 1"
	v, err := scanVehicle(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// VehicleFilters narrows list and export queries. Search matches both
// plates and both case numbers. Zero values mean "no filter".
type VehicleFilters struct {
	Search              string
	StatusPericia       model.StatusPericia
	Devolvido           model.SimNao
	DataInicio          *time.Time
	DataFim             *time.Time
	DataDevolucaoInicio *time.Time
	DataDevolucaoFim    *time.Time
}

// VehicleListQuery bundles filters, pagination and sorting.
type VehicleListQuery struct {
	Filters   VehicleFilters
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string // "asc" | "desc"
}

// sortColumns whitelists the columns callers may sort by. Anything
// else falls back to createdAt.
var sortColumns = map[string]string{
	"id":                 "id",
	"placaOriginal":      "placaOriginal",
	"placaOstentada":     "placaOstentada",
	"marca":              "marca",
	"modelo":             "modelo",
	"cor":                "cor",
	"ano":                "ano",
	"anoModelo":          "anoModelo",
	"chassi":             "chassi",
	"municipio":          "municipio",
	"uf":                 "uf",
	"numeroProcedimento": "numeroProcedimento",
	"numeroProcesso":     "numeroProcesso",
	"statusPericia":      "statusPericia",
	"devolvido":          "devolvido",
	"dataDevolucao":      "dataDevolucao",
	"createdAt":          "createdAt",
	"updatedAt":          "updatedAt",
}

func buildVehicleWhere(f VehicleFilters) (string, []any) {
	where := []string{}
	args := []any{}

	if f.Search != "" {
		term := "%" + f.Search + "%"
		where = append(where, "(placaOriginal LIKE ? OR placaOstentada LIKE ? OR numeroProcesso LIKE ? OR numeroProcedimento LIKE ?)")
		args = append(args, term, term, term, term)
	}
	if f.StatusPericia != "" {
		where = append(where, "statusPericia = ?")
		args = append(args, f.StatusPericia)
	}
	if f.Devolvido != "" {
		where = append(where, "devolvido = ?")
		args = append(args, f.Devolvido)
	}
	if f.DataInicio != nil {
		where = append(where, "createdAt >= ?")
		args = append(args, *f.DataInicio)
	}
	if f.DataFim != nil {
		where = append(where, "createdAt <= ?")
		args = append(args, *f.DataFim)
	}
	if f.DataDevolucaoInicio != nil {
		where = append(where, "dataDevolucao >= ?")
		args = append(args, *f.DataDevolucaoInicio)
	}
	if f.DataDevolucaoFim != nil {
		where = append(where, "dataDevolucao <= ?")
		args = append(args, *f.DataDevolucaoFim)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	return cond, args
}

// List returns one page of vehicles plus the total row count for the
// same filters.
func (r *VehicleRepo) List(ctx context.Context, q VehicleListQuery) ([]*model.Vehicle, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}

	cond, args := buildVehicleWhere(q.Filters)

	var total int64
	countSQL := "SELECT COUNT(*) FROM vehicles WHERE " + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "createdAt"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		dir = "ASC"
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := "SELECT " + vehicleColumns + " FROM vehicles WHERE " + cond +
		" ORDER BY " + col + " " + dir + " LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*model.Vehicle, 0, limit)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListAllForExport returns every vehicle matching the filters, newest
// first, without pagination. It feeds the CSV export path.
func (r *VehicleRepo) ListAllForExport(ctx context.Context, f VehicleFilters) ([]*model.Vehicle, error) {
	cond, args := buildVehicleWhere(f)
	q := "SELECT " + vehicleColumns + " FROM vehicles WHERE " + cond + " ORDER BY createdAt DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats computes the dashboard counters in a single scan.
func (r *VehicleRepo) Stats(ctx context.Context) (model.VehicleStats, error) {
	const q = `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN devolvido = 'nao' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN devolvido = 'sim' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN statusPericia = 'pendente' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN statusPericia = 'feita' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN statusPericia = 'sem_pericia' THEN 1 ELSE 0 END), 0)
		FROM vehicles`
	var s model.VehicleStats
	err := r.db.QueryRowContext(ctx, q).Scan(&s.TotalGeral, &s.TotalNoPatio, &s.TotalDevolvidos,
		&s.PericiasPendentes, &s.PericiasFeitas, &s.SemPericia)
	if err != nil {
		return model.VehicleStats{}, err
	}
	return s, nil
}
