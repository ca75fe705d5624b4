// Package store provides an interface for inventory storage operations.
package store

import (
	"context"

	"github.com/abgdnv/invtrack/internal/store/db"
	"github.com/google/uuid"
)

// InventoryStore is an interface for inventory storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type InventoryStore interface {
	// CreateProduct adds a new product to the catalog.
	// Returns ErrDuplicateSKU if the sku is already taken.
	CreateProduct(ctx context.Context, params db.CreateProductParams) (*db.Product, error)

	// ListProducts returns all products together with their derived current stock.
	// Returns an empty slice if no products exist.
	ListProducts(ctx context.Context) ([]db.ListProductsWithStockRow, error)

	// UpdateProduct applies the non-nil fields of params to an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID and
	// ErrDuplicateSKU if the new sku collides with another product.
	UpdateProduct(ctx context.Context, params db.UpdateProductParams) (*db.Product, error)

	// DeleteProduct removes a product and all of its stock movements atomically.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// CreateMovement appends a stock movement to the ledger.
	// Returns ErrProductNotFound if the referenced product does not exist.
	CreateMovement(ctx context.Context, params db.CreateStockMovementParams) (*db.StockMovement, error)

	// CurrentStock folds the movement ledger of a product into its net quantity.
	// Returns ErrProductNotFound if no product exists with the given ID.
	CurrentStock(ctx context.Context, id uuid.UUID) (int64, error)

	// Summary computes portfolio-level metrics over all products.
	Summary(ctx context.Context) (*db.GetInventorySummaryRow, error)
}
