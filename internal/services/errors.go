package services

import (
	"errors"
	"fmt"

	"github.com/pasumerce/inventario/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrValidation            = errors.New("validation_failed")
	ErrNotFound              = errors.New("not_found")
	ErrInvalidState          = errors.New("invalid_state")
	ErrInsufficientInventory = errors.New("insufficient_inventory")
	ErrConflict              = errors.New("conflict")
	ErrInternal              = errors.New("internal_error")
)

// ValidationError is returned before any storage access when input is malformed.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", map[string]string(e.Violations))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError names the entity that a request referenced but does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Code is the snake_case error code exposed over HTTP.
func (e *NotFoundError) Code() string { return e.Entity + "_not_found" }

type InvalidStateError struct {
	Code   string
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// Shortfall is one ingredient that cannot cover a requested run.
type Shortfall struct {
	IngredientID uint            `json:"idInventario"`
	Name         string          `json:"nombreIngrediente"`
	Required     decimal.Decimal `json:"cantidadRequerida"`
	Available    decimal.Decimal `json:"cantidadDisponible"`
}

// InsufficientInventoryError carries every shortfall found, not only the first.
type InsufficientInventoryError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %d ingredient(s)", len(e.Shortfalls))
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientInventory
}

type ConflictError struct {
	Code   string
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// InternalError wraps a storage failure. Anything written in the same
// transaction has been rolled back by the time a caller sees it.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Is(target error) bool { return target == ErrInternal }

func internal(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}

// onDuplicate reports a unique-index violation as conflict. It catches the
// insert that races past a uniqueness pre-check; the DB must be opened with
// TranslateError.
func onDuplicate(err error, conflict *ConflictError) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}

// passthrough keeps domain errors intact and wraps anything else as internal.
func passthrough(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidState), errors.Is(err, ErrInsufficientInventory),
		errors.Is(err, ErrConflict), errors.Is(err, ErrInternal):
		return err
	}
	return internal(op, err)
}
