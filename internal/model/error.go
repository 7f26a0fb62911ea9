package model

import (
	"errors"
	"fmt"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound       = "ORDER_NOT_FOUND"
	ErrCodeBatchNotFound       = "BATCH_NOT_FOUND"
	ErrCodeInvalidBatch        = "INVALID_BATCH"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeTerminalState       = "TERMINAL_STATE"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// DomainError is a business-rule violation with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Cart must contain at least one item")
	ErrProductNotFound     = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound       = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrBatchNotFound       = NewDomainError(ErrCodeBatchNotFound, "Product batch not found")
	ErrInvalidBatch        = NewDomainError(ErrCodeInvalidBatch, "Batch expiry date must be after the manufactured date")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrTerminalState       = NewDomainError(ErrCodeTerminalState, "Order is in a terminal state and cannot be modified")
	ErrInvalidTransition   = NewDomainError(ErrCodeInvalidTransition, "Status transition is not permitted")
	ErrConcurrencyConflict = NewDomainError(ErrCodeConcurrencyConflict, "Record was modified concurrently, retry the operation")
)

// InsufficientStockError reports a failed stock check for a single product.
// Placement aborts the whole order on the first failing line.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s is out of stock: requested %d, only %d available",
		e.ProductName, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var ise *InsufficientStockError
	return errors.As(err, &ise)
}
