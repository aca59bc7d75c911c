package platelookup // consulta de placas na API externa wdapi2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/iliyamo/vehicle-yard/internal/vehicle"
)

// DefaultBaseURL is the public endpoint of the plate lookup API.
const DefaultBaseURL = "https://wdapi2.com.br"

// ErrNotConfigured is returned when no API token is set.
var ErrNotConfigured = errors.New("serviço de consulta não configurado. Entre em contato com o administrador")

// VehicleData carries the fields the lookup API returns for a plate.
// Field names match the registration form so a hit can pre-fill it.
type VehicleData struct {
	Marca       *string `json:"marca"`
	Modelo      *string `json:"modelo"`
	Cor         *string `json:"cor"`
	Ano         *string `json:"ano"`
	AnoModelo   *string `json:"anoModelo"`
	Chassi      *string `json:"chassi"`
	Combustivel *string `json:"combustivel"`
	Municipio   *string `json:"municipio"`
	UF          *string `json:"uf"`
	Situacao    *string `json:"situacao"`
}

// Client queries the wdapi2 plate database. The token is never logged.
type Client struct {
	Token   string
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a lookup client with the documented 15 second timeout.
func NewClient(token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// apiResponse mirrors the upstream payload. The API is inconsistent about
// casing on brand and model, so both spellings are read.
type apiResponse struct {
	Marca      string `json:"MARCA"`
	MarcaLower string `json:"marca"`
	Modelo     string `json:"MODELO"`
	ModeloLow  string `json:"modelo"`
	Cor        string `json:"cor"`
	Ano        string `json:"ano"`
	AnoModelo  string `json:"anoModelo"`
	Chassi     string `json:"chassi"`
	Municipio  string `json:"municipio"`
	UF         string `json:"uf"`
	Situacao   string `json:"situacao"`
	Message    string `json:"message"`
	Extra      struct {
		Combustivel string `json:"combustivel"`
	} `json:"extra"`
}

// Lookup normalizes and validates the plate, then queries the external
// API. Errors carry user-facing messages in Portuguese; the handler can
// return err.Error() directly.
func (c *Client) Lookup(ctx context.Context, placa string) (*VehicleData, error) {
	normalized := vehicle.NormalizePlaca(placa)
	// Format is checked before the token so a bad plate fails fast even
	// on an unconfigured instance.
	if err := vehicle.ValidatePlaca(normalized); err != nil {
		return nil, errors.New("formato de placa inválido. Use o formato ABC1234 ou ABC1D23")
	}
	if c.Token == "" {
		log.Printf("platelookup: token não configurado")
		return nil, ErrNotConfigured
	}

	url := fmt.Sprintf("%s/consulta/%s/%s", c.BaseURL, normalized, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New("erro ao consultar a placa. Tente novamente")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Printf("platelookup: request failed: %v", err)
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, errors.New("a consulta demorou muito. Tente novamente")
		}
		return nil, errors.New("serviço temporariamente indisponível. Tente novamente mais tarde")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.New("erro ao consultar a placa. Tente novamente")
	}

	if resp.StatusCode != http.StatusOK {
		var upstream apiResponse
		_ = json.Unmarshal(body, &upstream)
		log.Printf("platelookup: upstream status %d for %s", resp.StatusCode, normalized)
		return nil, statusError(resp.StatusCode, upstream.Message)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.New("erro ao consultar a placa. Tente novamente")
	}

	return &VehicleData{
		Marca:       firstNonEmpty(out.Marca, out.MarcaLower),
		Modelo:      firstNonEmpty(out.Modelo, out.ModeloLow),
		Cor:         nilIfEmpty(out.Cor),
		Ano:         nilIfEmpty(out.Ano),
		AnoModelo:   nilIfEmpty(out.AnoModelo),
		Chassi:      nilIfEmpty(out.Chassi),
		Combustivel: nilIfEmpty(out.Extra.Combustivel),
		Municipio:   nilIfEmpty(out.Municipio),
		UF:          nilIfEmpty(out.UF),
		Situacao:    nilIfEmpty(out.Situacao),
	}, nil
}

// statusError maps upstream HTTP codes to the messages shown to users.
func statusError(status int, upstreamMsg string) error {
	switch status {
	case http.StatusBadRequest:
		return errors.New("URL incorreta. Entre em contato com o administrador")
	case http.StatusUnauthorized:
		if upstreamMsg != "" {
			return errors.New(upstreamMsg)
		}
		return errors.New("placa inválida. Verifique o formato")
	case http.StatusPaymentRequired:
		return errors.New("token inválido. Entre em contato com o administrador")
	case http.StatusNotAcceptable:
		return errors.New("veículo não encontrado na base de dados")
	case http.StatusTooManyRequests:
		return errors.New("limite de consultas atingido. Aguarde ou entre em contato com o administrador")
	}
	return errors.New("erro ao consultar a placa. Tente novamente")
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func firstNonEmpty(vals ...string) *string {
	for _, v := range vals {
		if v != "" {
			s := v
			return &s
		}
	}
	return nil
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
