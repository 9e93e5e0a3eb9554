package usecase

import (
	"errors"
	"fmt"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 入力が不正（ストアに触る前に返す）
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// 指定IDのアイテムが存在しない
type ItemNotFoundError struct {
	ID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Item with ID %s not found", e.ID)
}

// 在庫不足（どのアイテムが・いくつ要求されて・いくつ残っているか）
type InsufficientStockError struct {
	ID        string
	Name      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough %s available. Requested: %d, Available: %d", e.Name, e.Requested, e.Available)
}

// インフラ起因の失敗（DB到達不能・commit競合・タイムアウト）
// rollback済みなのでバッチ全体の再送は安全。
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return "Server error during purchase"
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
