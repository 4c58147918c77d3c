// Package domain define entidades y errores del núcleo fiscal (sin dependencias externas).
package domain

import (
	"errors"
	"fmt"
)

// Errores sentinela de uso general.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUnauthorized = errors.New("no autorizado")
)

// ValidationError entrada o identidad fiscal incompleta. Terminal y corregible
// por el usuario; nunca se reintenta automáticamente.
type ValidationError struct {
	Field string // primer campo faltante o inválido
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("validación: %s (%s)", e.Msg, e.Field)
	}
	return fmt.Sprintf("validación: falta el campo %s", e.Field)
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError un pago, paciente, clínica o identidad referida no existe.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Resource, e.ID)
}

// IssuerError el PAC rechazó una petición. Message lleva el mensaje extraído
// del cuerpo de la respuesta (JSON cuando es parseable, texto crudo si no).
type IssuerError struct {
	StatusCode int
	Message    string
}

func (e *IssuerError) Error() string {
	return fmt.Sprintf("pac: %s (http %d)", e.Message, e.StatusCode)
}

// StorageError falló la descarga de un blob del object storage (CSD).
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError una escritura local falló después de un timbrado exitoso.
// Se registra en log como inconsistencia crítica no fatal; jamás se propaga al
// caller porque el acto fiscal ya ocurrió en el PAC.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistencia: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
