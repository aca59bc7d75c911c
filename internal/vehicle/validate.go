package vehicle

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrValidation wraps every boundary validation failure so handlers
// can map the whole family to a 400 response with errors.Is.
var ErrValidation = errors.New("validação falhou")

var (
	// Procedimento: xxx-xxxxx/ano (ex: 001-00001/2024)
	procedimentoRe = regexp.MustCompile(`^\d{3}-\d{5}/\d{4}$`)
	// Processo judicial: xxxxxxx-xx.xxxx.x.xx.xxxx (ex: 0000001-00.2024.8.26.0001)
	processoRe = regexp.MustCompile(`^\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}$`)
	// Placa antiga ABC1234 ou Mercosul ABC1D23, already normalized.
	placaRe = regexp.MustCompile(`^[A-Z]{3}\d[A-Z0-9]\d{2}$|^[A-Z]{3}\d{4}$`)
)

const maxObservacoes = 200

// NormalizePlaca strips spaces and dashes and upper-cases the plate,
// the same canonical form the external lookup API expects.
func NormalizePlaca(placa string) string {
	placa = strings.ReplaceAll(placa, "-", "")
	placa = strings.ReplaceAll(placa, " ", "")
	return strings.ToUpper(placa)
}

// ValidatePlaca checks a normalized plate against the old and
// Mercosul formats.
func ValidatePlaca(placa string) error {
	if !placaRe.MatchString(placa) {
		return fmt.Errorf("%w: formato de placa inválido, use ABC1234 ou ABC1D23", ErrValidation)
	}
	return nil
}

// ValidateNumeroProcedimento enforces the xxx-xxxxx/ano format.
func ValidateNumeroProcedimento(n string) error {
	if !procedimentoRe.MatchString(n) {
		return fmt.Errorf("%w: número de procedimento inválido, use xxx-xxxxx/ano (ex: 001-00001/2024)", ErrValidation)
	}
	return nil
}

// ValidateNumeroProcesso enforces the CNJ case-number format.
func ValidateNumeroProcesso(n string) error {
	if !processoRe.MatchString(n) {
		return fmt.Errorf("%w: número de processo inválido, use xxxxxxx-xx.xxxx.x.xx.xxxx (ex: 0000001-00.2024.8.26.0001)", ErrValidation)
	}
	return nil
}

// ValidateObservacoes bounds the free-text note.
func ValidateObservacoes(obs string) error {
	if len(obs) > maxObservacoes {
		return fmt.Errorf("%w: observações excedem %d caracteres", ErrValidation, maxObservacoes)
	}
	return nil
}
