package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/vehicle-yard/internal/model"
	"github.com/iliyamo/vehicle-yard/internal/repository"
)

// ExportHandler streams the filtered vehicle set as CSV. The file uses
// semicolons and a UTF-8 BOM so Excel pt-BR opens it correctly.
type ExportHandler struct {
	Vehicles *repository.VehicleRepo
}

func NewExportHandler(repo *repository.VehicleRepo) *ExportHandler {
	return &ExportHandler{Vehicles: repo}
}

var csvHeaders = []string{
	"ID", "Placa Original", "Placa Ostentada", "Marca", "Modelo", "Cor",
	"Ano Fab.", "Ano Mod.", "Chassi", "Combustível", "Município", "UF",
	"Procedimento", "Processo", "Observações", "Status Perícia",
	"Devolvido", "Data Devolução", "Data Cadastro",
}

// CSV exports every vehicle matching the current filters, without
// pagination, newest first.
func (h *ExportHandler) CSV(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	vehicles, err := h.Vehicles.ListAllForExport(ctx, filtersFromQuery(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF}) // BOM so Excel detects UTF-8
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeaders); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	for _, v := range vehicles {
		rec := []string{
			strconv.FormatUint(v.ID, 10),
			deref(v.PlacaOriginal), deref(v.PlacaOstentada),
			deref(v.Marca), deref(v.Modelo), deref(v.Cor),
			deref(v.Ano), deref(v.AnoModelo), deref(v.Chassi),
			deref(v.Combustivel), deref(v.Municipio), deref(v.UF),
			deref(v.NumeroProcedimento), deref(v.NumeroProcesso), deref(v.Observacoes),
			periciaLabel(v.StatusPericia),
			simNaoLabel(v.Devolvido),
			formatDateBR(v.DataDevolucao),
			formatDateBR(&v.CreatedAt),
		}
		if err := w.Write(rec); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}

	filename := fmt.Sprintf("veiculos_%s.csv", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// periciaLabel renders the enum the way the reports show it.
func periciaLabel(s model.StatusPericia) string {
	switch s {
	case model.PericiaPendente:
		return "Pendente"
	case model.PericiaFeita:
		return "Feita"
	case model.PericiaSem:
		return "Sem Perícia"
	}
	return string(s)
}

func simNaoLabel(s model.SimNao) string {
	if s == model.Sim {
		return "Sim"
	}
	return "Não"
}

// formatDateBR renders dates as dd/mm/yyyy, empty when nil.
func formatDateBR(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
