// Package repository contains the data access layer: raw SQL against
// the MySQL database, separated from HTTP handlers and from the audit
// and lifecycle logic. This file defines sentinel errors shared across
// repositories so higher layers can distinguish failure scenarios
// with errors.Is.
package repository

import "errors"

// ErrVehicleNotFound is returned when a vehicle id matches no row.
var ErrVehicleNotFound = errors.New("veículo não encontrado")

// ErrLogNotFound is returned when an audit-log id matches no row.
var ErrLogNotFound = errors.New("registro de auditoria não encontrado")

// ErrAlreadyReverted is returned by MarkReverted when the entry's
// reverted flag was already set. Reverted is terminal: the
// conditional update that produces this error is what guarantees an
// entry is reverted at most once, even under concurrent calls.
var ErrAlreadyReverted = errors.New("ação já revertida")
