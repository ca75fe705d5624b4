// Package service provides the implementation of inventory business logic.
package service

import (
	"context"
	"fmt"

	ierrors "github.com/abgdnv/invtrack/internal/errors"
	"github.com/abgdnv/invtrack/internal/store"
	"github.com/abgdnv/invtrack/internal/store/db"
	"github.com/google/uuid"
)

// Movement types accepted by the ledger.
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// InventoryService defines the methods for managing products and their stock ledger.
// It abstracts the underlying business logic and data access.
type InventoryService interface {
	// ListProducts returns all products with their derived current stock.
	// Returns an empty slice if no products exist.
	ListProducts(ctx context.Context) ([]ProductDto, error)

	// CreateProduct adds a new product to the catalog and returns its ID.
	// Returns ErrDuplicateSKU if the sku is already taken.
	CreateProduct(ctx context.Context, product ProductCreateDto) (uuid.UUID, error)

	// UpdateProduct applies the supplied fields to an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID,
	// ErrNoFieldsToUpdate if no recognized field is present and
	// ErrDuplicateSKU if the new sku collides with another product.
	UpdateProduct(ctx context.Context, id uuid.UUID, product ProductUpdateDto) error

	// DeleteProduct removes a product and all of its stock movements.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	// RecordMovement appends an IN or OUT movement to the ledger of a product.
	// Returns ErrProductNotFound if the referenced product does not exist.
	RecordMovement(ctx context.Context, movement MovementCreateDto) error

	// CurrentStock derives the net stock quantity of a product from its ledger.
	// Returns ErrProductNotFound if no product exists with the given ID.
	CurrentStock(ctx context.Context, id uuid.UUID) (int64, error)

	// Summary computes portfolio-level metrics over all products.
	Summary(ctx context.Context) (*SummaryDto, error)
}

// Service implements InventoryService and provides methods to manage the inventory.
type Service struct {
	repository store.InventoryStore
}

// NewService creates a new instance of InventoryService with the provided repository.
func NewService(repo store.InventoryStore) *Service {
	return &Service{
		repository: repo,
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Numeric fields are pointers so that an absent field is distinguishable from a zero value.
type ProductCreateDto struct {
	Sku          string   `json:"sku"           validate:"required,max=64"`
	Name         string   `json:"name"          validate:"required,max=100"`
	Category     string   `json:"category"      validate:"required,max=100"`
	CostPrice    *float64 `json:"cost_price"    validate:"required,gte=0"`
	SellingPrice *float64 `json:"selling_price" validate:"required,gte=0"`
	ReorderLevel *int32   `json:"reorder_level" validate:"required,gte=0"`
}

// ProductUpdateDto represents a partial product update.
// Only non-nil fields are applied; all nil means there is nothing to update.
type ProductUpdateDto struct {
	Sku          *string  `json:"sku"           validate:"omitempty,max=64"`
	Name         *string  `json:"name"          validate:"omitempty,max=100"`
	Category     *string  `json:"category"      validate:"omitempty,max=100"`
	CostPrice    *float64 `json:"cost_price"    validate:"omitempty,gte=0"`
	SellingPrice *float64 `json:"selling_price" validate:"omitempty,gte=0"`
	ReorderLevel *int32   `json:"reorder_level" validate:"omitempty,gte=0"`
}

// HasFields reports whether at least one recognized field is present.
func (d ProductUpdateDto) HasFields() bool {
	return d.Sku != nil || d.Name != nil || d.Category != nil ||
		d.CostPrice != nil || d.SellingPrice != nil || d.ReorderLevel != nil
}

// MovementCreateDto represents the data transfer object for recording a stock movement.
type MovementCreateDto struct {
	ProductID    string  `json:"product_id"    validate:"required,uuid"`
	MovementType string  `json:"movement_type" validate:"required,oneof=IN OUT"`
	Qty          *int32  `json:"qty"           validate:"required,gt=0"`
	Note         *string `json:"note"          validate:"omitempty,max=500"`
}

// ProductDto represents a product together with its derived current stock.
type ProductDto struct {
	ID           string  `json:"id"`
	Sku          string  `json:"sku"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	ReorderLevel int32   `json:"reorder_level"`
	CurrentStock int64   `json:"current_stock"`
}

// SummaryDto represents portfolio-level inventory metrics.
type SummaryDto struct {
	TotalItems          int64   `json:"total_items"`
	LowStockCount       int64   `json:"low_stock_count"`
	TotalInventoryValue float64 `json:"total_inventory_value"`
}

// ListProducts retrieves all products with their current stock and returns them as ProductDTOs.
// Returns an empty slice if no products exist or error if the retrieval fails.
func (s *Service) ListProducts(ctx context.Context) ([]ProductDto, error) {
	products, err := s.repository.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productDTOs := make([]ProductDto, len(products))

	for i, item := range products {
		productDTOs[i] = toDto(item)
	}

	return productDTOs, nil
}

// CreateProduct creates a new product and returns its ID.
// Returns ErrDuplicateSKU if the sku is already taken.
func (s *Service) CreateProduct(ctx context.Context, product ProductCreateDto) (uuid.UUID, error) {
	created, err := s.repository.CreateProduct(ctx, db.CreateProductParams{
		Sku:          product.Sku,
		Name:         product.Name,
		Category:     product.Category,
		CostPrice:    *product.CostPrice,
		SellingPrice: *product.SellingPrice,
		ReorderLevel: *product.ReorderLevel,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create product: %w", err)
	}

	return created.ID, nil
}

// UpdateProduct applies the supplied fields to an existing product.
// Returns ErrNoFieldsToUpdate if the update carries no recognized field.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, product ProductUpdateDto) error {
	if !product.HasFields() {
		return ierrors.ErrNoFieldsToUpdate
	}
	_, err := s.repository.UpdateProduct(ctx, db.UpdateProductParams{
		Sku:          product.Sku,
		Name:         product.Name,
		Category:     product.Category,
		CostPrice:    product.CostPrice,
		SellingPrice: product.SellingPrice,
		ReorderLevel: product.ReorderLevel,
		ID:           id,
	})
	if err != nil {
		return fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return nil
}

// DeleteProduct removes a product and all of its stock movements.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteProduct(ctx, id)
}

// RecordMovement appends a stock movement to the ledger of a product.
// Returns ErrProductNotFound if the referenced product does not exist.
func (s *Service) RecordMovement(ctx context.Context, movement MovementCreateDto) error {
	productID, err := uuid.Parse(movement.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product ID %q: %w", movement.ProductID, err)
	}
	_, err = s.repository.CreateMovement(ctx, db.CreateStockMovementParams{
		ProductID:    productID,
		MovementType: movement.MovementType,
		Qty:          *movement.Qty,
		Note:         movement.Note,
	})
	if err != nil {
		return fmt.Errorf("failed to record movement for product %s: %w", productID, err)
	}
	return nil
}

// CurrentStock derives the net stock quantity of a product from its ledger.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) CurrentStock(ctx context.Context, id uuid.UUID) (int64, error) {
	stock, err := s.repository.CurrentStock(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch current stock for product %s: %w", id, err)
	}
	return stock, nil
}

// Summary computes portfolio-level metrics over all products.
func (s *Service) Summary(ctx context.Context) (*SummaryDto, error) {
	summary, err := s.repository.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary: %w", err)
	}
	return &SummaryDto{
		TotalItems:          summary.TotalItems,
		LowStockCount:       summary.LowStockCount,
		TotalInventoryValue: summary.TotalInventoryValue,
	}, nil
}

// toDto converts a product row with stock to a ProductDto.
func toDto(row db.ListProductsWithStockRow) ProductDto {
	return ProductDto{
		ID:           row.ID.String(),
		Sku:          row.Sku,
		Name:         row.Name,
		Category:     row.Category,
		CostPrice:    row.CostPrice,
		SellingPrice: row.SellingPrice,
		ReorderLevel: row.ReorderLevel,
		CurrentStock: row.CurrentStock,
	}
}
