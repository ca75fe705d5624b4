package store

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	ierrors "github.com/abgdnv/invtrack/internal/errors"
	"github.com/abgdnv/invtrack/internal/store/db"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// InventoryStoreSuite is a test suite for the InventoryStore implementation.
type InventoryStoreSuite struct {
	suite.Suite                             // Embedding testify suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	store       InventoryStore              //
	logger      *slog.Logger                // Logger for the test suite
	ctx         context.Context             // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *InventoryStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "inventory_db"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "../../migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for InventoryStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *InventoryStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *InventoryStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

// TestInventoryStoreIntegration runs the InventoryStore integration tests.
func TestInventoryStoreIntegration(t *testing.T) {
	// Skip integration tests if the environment variable is set
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	// Run the test suite
	suite.Run(t, new(InventoryStoreSuite))
}

// createTestProduct is a helper function to create a product for testing purposes.
func (s *InventoryStoreSuite) createTestProduct(params db.CreateProductParams) *db.Product {
	s.T().Helper()
	product, err := s.store.CreateProduct(s.ctx, params)
	require.NoError(s.T(), err, "createTestProduct helper failed to create product")
	return product
}

// recordTestMovement is a helper function to append a movement for testing purposes.
func (s *InventoryStoreSuite) recordTestMovement(productID uuid.UUID, movementType string, qty int32) *db.StockMovement {
	s.T().Helper()
	movement, err := s.store.CreateMovement(s.ctx, db.CreateStockMovementParams{
		ProductID:    productID,
		MovementType: movementType,
		Qty:          qty,
	})
	require.NoError(s.T(), err, "recordTestMovement helper failed to record movement")
	return movement
}

func testProductParams(sku string) db.CreateProductParams {
	return db.CreateProductParams{
		Sku:          sku,
		Name:         "Widget",
		Category:     "tools",
		CostPrice:    10,
		SellingPrice: 20,
		ReorderLevel: 5,
	}
}

func (s *InventoryStoreSuite) TestCreateProduct() {
	s.SetupTest()
	// given
	params := testProductParams("A1")

	// when
	created, err := s.store.CreateProduct(s.ctx, params)

	// then
	require.NoError(s.T(), err, "CreateProduct should not return an error")
	require.NotZero(s.T(), created.ID, "Created product ID should not be zero")
	require.Equal(s.T(), params.Sku, created.Sku)
	require.Equal(s.T(), params.Name, created.Name)
	require.Equal(s.T(), params.Category, created.Category)
	require.Equal(s.T(), params.CostPrice, created.CostPrice)
	require.Equal(s.T(), params.SellingPrice, created.SellingPrice)
	require.Equal(s.T(), params.ReorderLevel, created.ReorderLevel)
	require.NotZero(s.T(), created.CreatedAt, "CreatedAt should be set")
}

func (s *InventoryStoreSuite) TestCreateProduct_DuplicateSKU() {
	s.SetupTest()
	// given
	s.createTestProduct(testProductParams("A1"))

	// when
	_, err := s.store.CreateProduct(s.ctx, testProductParams("A1"))

	// then
	require.ErrorIs(s.T(), err, ierrors.ErrDuplicateSKU, "Expected ErrDuplicateSKU for duplicate sku")

	// and the store is unchanged
	list, listErr := s.store.ListProducts(s.ctx)
	require.NoError(s.T(), listErr)
	require.Len(s.T(), list, 1, "Failed insert should leave a single product")
}

func (s *InventoryStoreSuite) TestListProducts_WithCurrentStock() {
	s.SetupTest()
	// given
	first := s.createTestProduct(testProductParams("A1"))
	second := s.createTestProduct(testProductParams("B2"))
	s.recordTestMovement(first.ID, "IN", 8)
	s.recordTestMovement(first.ID, "OUT", 3)

	// when
	list, err := s.store.ListProducts(s.ctx)

	// then
	require.NoError(s.T(), err, "ListProducts should not return an error")
	require.Len(s.T(), list, 2)

	byID := make(map[uuid.UUID]db.ListProductsWithStockRow, len(list))
	for _, row := range list {
		byID[row.ID] = row
	}
	require.Equal(s.T(), int64(5), byID[first.ID].CurrentStock, "IN 8 minus OUT 3 should yield 5")
	require.Equal(s.T(), int64(0), byID[second.ID].CurrentStock, "Product with no movements should have zero stock")
}

func (s *InventoryStoreSuite) TestUpdateProduct_PartialFields() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))
	newName := "Renamed"
	newReorder := int32(10)

	// when
	updated, err := s.store.UpdateProduct(s.ctx, db.UpdateProductParams{
		Name:         &newName,
		ReorderLevel: &newReorder,
		ID:           created.ID,
	})

	// then
	require.NoError(s.T(), err, "UpdateProduct should not return an error")
	require.Equal(s.T(), newName, updated.Name)
	require.Equal(s.T(), newReorder, updated.ReorderLevel)
	// untouched fields keep their values
	require.Equal(s.T(), created.Sku, updated.Sku)
	require.Equal(s.T(), created.Category, updated.Category)
	require.Equal(s.T(), created.CostPrice, updated.CostPrice)
	require.Equal(s.T(), created.SellingPrice, updated.SellingPrice)
}

func (s *InventoryStoreSuite) TestUpdateProduct_NotFound() {
	s.SetupTest()
	// given (no products created)
	newName := "Renamed"

	// when
	_, err := s.store.UpdateProduct(s.ctx, db.UpdateProductParams{Name: &newName, ID: uuid.New()})

	// then
	require.ErrorIs(s.T(), err, ierrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *InventoryStoreSuite) TestUpdateProduct_DuplicateSKU() {
	s.SetupTest()
	// given
	s.createTestProduct(testProductParams("A1"))
	second := s.createTestProduct(testProductParams("B2"))
	collidingSku := "A1"

	// when
	_, err := s.store.UpdateProduct(s.ctx, db.UpdateProductParams{Sku: &collidingSku, ID: second.ID})

	// then
	require.ErrorIs(s.T(), err, ierrors.ErrDuplicateSKU, "Expected ErrDuplicateSKU when sku collides with another product")
}

func (s *InventoryStoreSuite) TestDeleteProduct_CascadesMovements() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))
	s.recordTestMovement(created.ID, "IN", 8)
	s.recordTestMovement(created.ID, "OUT", 3)

	// when
	err := s.store.DeleteProduct(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "DeleteProduct should not return an error")

	var movements int
	require.NoError(s.T(), s.dbPool.QueryRow(s.ctx,
		"SELECT COUNT(*) FROM stock_movements WHERE product_id = $1", created.ID).Scan(&movements))
	require.Zero(s.T(), movements, "Movements should be deleted together with the product")

	_, err = s.store.CurrentStock(s.ctx, created.ID)
	require.ErrorIs(s.T(), err, ierrors.ErrProductNotFound, "Stock query for a deleted product should report not found")
}

func (s *InventoryStoreSuite) TestDeleteProduct_NotFound() {
	s.SetupTest()
	// given (no products created)

	// when
	err := s.store.DeleteProduct(s.ctx, uuid.New())

	// then
	require.ErrorIs(s.T(), err, ierrors.ErrProductNotFound, "Expected ErrProductNotFound for non-existent product")
}

func (s *InventoryStoreSuite) TestCreateMovement() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))
	note := "restock"

	// when
	movement, err := s.store.CreateMovement(s.ctx, db.CreateStockMovementParams{
		ProductID:    created.ID,
		MovementType: "IN",
		Qty:          8,
		Note:         &note,
	})

	// then
	require.NoError(s.T(), err, "CreateMovement should not return an error")
	require.NotZero(s.T(), movement.ID, "Created movement ID should not be zero")
	require.Equal(s.T(), created.ID, movement.ProductID)
	require.Equal(s.T(), "IN", movement.MovementType)
	require.Equal(s.T(), int32(8), movement.Qty)
	require.NotNil(s.T(), movement.Note)
	require.Equal(s.T(), note, *movement.Note)
	require.NotZero(s.T(), movement.RecordedAt, "RecordedAt should be assigned by the store")
}

func (s *InventoryStoreSuite) TestCreateMovement_UnknownProduct() {
	s.SetupTest()
	// given (no products created)

	// when
	_, err := s.store.CreateMovement(s.ctx, db.CreateStockMovementParams{
		ProductID:    uuid.New(),
		MovementType: "IN",
		Qty:          1,
	})

	// then
	require.ErrorIs(s.T(), err, ierrors.ErrProductNotFound, "Expected ErrProductNotFound for unknown product reference")

	var movements int
	require.NoError(s.T(), s.dbPool.QueryRow(s.ctx, "SELECT COUNT(*) FROM stock_movements").Scan(&movements))
	require.Zero(s.T(), movements, "Rejected movement should not be inserted")
}

func (s *InventoryStoreSuite) TestCurrentStock() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))
	s.recordTestMovement(created.ID, "IN", 8)
	s.recordTestMovement(created.ID, "OUT", 3)

	// when
	stock, err := s.store.CurrentStock(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "CurrentStock should not return an error")
	require.Equal(s.T(), int64(5), stock)
}

func (s *InventoryStoreSuite) TestCurrentStock_EmptyLedger() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))

	// when
	stock, err := s.store.CurrentStock(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "CurrentStock should not return an error")
	require.Zero(s.T(), stock, "Product with no movements should have zero stock")
}

func (s *InventoryStoreSuite) TestCurrentStock_NegativeAllowed() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))
	s.recordTestMovement(created.ID, "OUT", 3)

	// when
	stock, err := s.store.CurrentStock(s.ctx, created.ID)

	// then
	require.NoError(s.T(), err, "CurrentStock should not return an error")
	require.Equal(s.T(), int64(-3), stock, "OUT exceeding IN should yield negative stock")
}

func (s *InventoryStoreSuite) TestSummary() {
	s.SetupTest()
	// given: A1 at stock 5 (== reorder level, low), B2 at stock 8 (above reorder level)
	first := s.createTestProduct(testProductParams("A1"))
	second := s.createTestProduct(testProductParams("B2"))
	s.recordTestMovement(first.ID, "IN", 8)
	s.recordTestMovement(first.ID, "OUT", 3)
	s.recordTestMovement(second.ID, "IN", 8)

	// when
	summary, err := s.store.Summary(s.ctx)

	// then
	require.NoError(s.T(), err, "Summary should not return an error")
	require.Equal(s.T(), int64(2), summary.TotalItems)
	require.Equal(s.T(), int64(1), summary.LowStockCount, "Stock at the reorder level counts as low")
	require.InDelta(s.T(), 10*5+10*8, summary.TotalInventoryValue, 1e-9)
}

func (s *InventoryStoreSuite) TestSummary_Empty() {
	s.SetupTest()
	// given (no products created)

	// when
	summary, err := s.store.Summary(s.ctx)

	// then
	require.NoError(s.T(), err, "Summary should not return an error")
	require.Zero(s.T(), summary.TotalItems)
	require.Zero(s.T(), summary.LowStockCount)
	require.Zero(s.T(), summary.TotalInventoryValue)
}

func (s *InventoryStoreSuite) TestSummary_NegativeStockContributesNegatively() {
	s.SetupTest()
	// given
	created := s.createTestProduct(testProductParams("A1"))
	s.recordTestMovement(created.ID, "OUT", 3)

	// when
	summary, err := s.store.Summary(s.ctx)

	// then
	require.NoError(s.T(), err, "Summary should not return an error")
	require.Equal(s.T(), int64(1), summary.TotalItems)
	require.Equal(s.T(), int64(1), summary.LowStockCount)
	require.InDelta(s.T(), -30, summary.TotalInventoryValue, 1e-9, "Value should be cost_price * negative stock")
}
