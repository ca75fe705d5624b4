// Package errors provides custom error types for inventory operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrDuplicateSKU = errors.New("sku already exists")
var ErrNoFieldsToUpdate = errors.New("no fields to update")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")
