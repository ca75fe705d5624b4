package store

import (
	"context"
	"errors"
	"fmt"

	ierrors "github.com/abgdnv/invtrack/internal/errors"
	"github.com/abgdnv/invtrack/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes relevant to the inventory schema.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// PgStore implements InventoryStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of InventoryStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// CreateProduct adds a new product to the catalog.
// Returns ErrDuplicateSKU if the sku is already taken.
func (p *PgStore) CreateProduct(ctx context.Context, params db.CreateProductParams) (*db.Product, error) {
	product, err := p.q.CreateProduct(ctx, params)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return nil, ierrors.ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// ListProducts retrieves all products with their derived current stock.
// It returns a slice of rows, which may be empty if no products exist.
func (p *PgStore) ListProducts(ctx context.Context) ([]db.ListProductsWithStockRow, error) {
	products, err := p.q.ListProductsWithStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies the non-nil fields of params to an existing product.
// Returns ErrProductNotFound if no product exists with the given ID and
// ErrDuplicateSKU if the new sku collides with another product.
func (p *PgStore) UpdateProduct(ctx context.Context, params db.UpdateProductParams) (*db.Product, error) {
	product, err := p.q.UpdateProduct(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierrors.ErrProductNotFound
		}
		if isPgError(err, pgUniqueViolation) {
			return nil, ierrors.ErrDuplicateSKU
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes a product and all of its stock movements as one atomic unit.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return p.withTransaction(ctx, func(qtx *db.Queries) error {
		if err := qtx.DeleteProductMovements(ctx, id); err != nil {
			return fmt.Errorf("failed to delete stock movements: %w", err)
		}
		count, err := qtx.DeleteProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		if count == 0 {
			return ierrors.ErrProductNotFound
		}
		return nil
	})
}

// CreateMovement appends a stock movement to the ledger.
// Returns ErrProductNotFound if the referenced product does not exist.
func (p *PgStore) CreateMovement(ctx context.Context, params db.CreateStockMovementParams) (*db.StockMovement, error) {
	movement, err := p.q.CreateStockMovement(ctx, params)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return nil, ierrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to record stock movement: %w", err)
	}
	return &movement, nil
}

// CurrentStock folds the movement ledger of a product into its net quantity.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) CurrentStock(ctx context.Context, id uuid.UUID) (int64, error) {
	stock, err := p.q.GetCurrentStock(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ierrors.ErrProductNotFound
		}
		return 0, fmt.Errorf("failed to compute current stock: %w", err)
	}
	return stock, nil
}

// Summary computes portfolio-level metrics over all products.
func (p *PgStore) Summary(ctx context.Context) (*db.GetInventorySummaryRow, error) {
	summary, err := p.q.GetInventorySummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute inventory summary: %w", err)
	}
	return &summary, nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(qtx *db.Queries) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ierrors.ErrTransactionBegin
	}
	qtx := p.q.WithTx(tx)

	err = fn(qtx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return ierrors.ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ierrors.ErrTransactionCommit
	}

	return nil
}

// isPgError checks whether err is a PostgreSQL error with the given code.
func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
