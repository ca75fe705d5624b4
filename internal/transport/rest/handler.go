// Package rest provides HTTP handlers for inventory operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	ierrors "github.com/abgdnv/invtrack/internal/errors"
	"github.com/abgdnv/invtrack/internal/service"
	"github.com/abgdnv/invtrack/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the inventory API with the provided service.
func NewHandler(service service.InventoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateProduct)
			r.Delete("/", h.DeleteProduct)
			r.Get("/stock", h.CurrentStock)
		})
	})
	r.Post("/stock-movements", h.RecordMovement)
	r.Get("/summary", h.Summary)

	r.Get("/healthz", h.HealthCheck)
}

// ListProducts retrieves all products with their current stock.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to list products")
	list, err := h.service.ListProducts(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CreateProduct handles the creation of a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var productCreateDto service.ProductCreateDto
	if err := json.NewDecoder(r.Body).Decode(&productCreateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create product", "sku", productCreateDto.Sku)
	if err := h.validate.Struct(productCreateDto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.CreateProduct(r.Context(), productCreateDto)
	if err != nil {
		if errors.Is(err, ierrors.ErrDuplicateSKU) {
			mLogger.WarnContext(r.Context(), "Duplicate SKU", "sku", productCreateDto.Sku)
			web.RespondError(w, mLogger, http.StatusBadRequest, "SKU already exists")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error creating product", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", id, "sku", productCreateDto.Sku)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]any{"message": "Product added", "id": id})
}

// UpdateProduct applies a partial update to an existing product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update product", "ID", id)
	var productUpdateDto service.ProductUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&productUpdateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(productUpdateDto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateProduct(r.Context(), id, productUpdateDto); err != nil {
		switch {
		case errors.Is(err, ierrors.ErrNoFieldsToUpdate):
			mLogger.WarnContext(r.Context(), "No fields to update", "ID", id)
			web.RespondError(w, mLogger, http.StatusBadRequest, "No fields to update")
		case errors.Is(err, ierrors.ErrProductNotFound):
			mLogger.WarnContext(r.Context(), "Product not found for update", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
		case errors.Is(err, ierrors.ErrDuplicateSKU):
			mLogger.WarnContext(r.Context(), "Duplicate SKU on update", "ID", id)
			web.RespondError(w, mLogger, http.StatusBadRequest, "SKU already exists")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating product", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to update product with ID %s", id))
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"message": "Product updated", "id": id})
}

// DeleteProduct deletes a product and all of its stock movements.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, ierrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete product with ID %s", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"message": "Product deleted", "id": id})
}

// RecordMovement records an IN or OUT stock movement for a product.
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var movementDto service.MovementCreateDto
	if err := json.NewDecoder(r.Body).Decode(&movementDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to record movement",
		"product_id", movementDto.ProductID, "type", movementDto.MovementType)
	if err := h.validate.Struct(movementDto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.RecordMovement(r.Context(), movementDto); err != nil {
		// A movement against a missing product is a bad reference in the
		// request body, not a missing resource.
		if errors.Is(err, ierrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Movement references unknown product", "product_id", movementDto.ProductID)
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid product_id")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error recording movement", "product_id", movementDto.ProductID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to record stock movement")
		return
	}
	mLogger.InfoContext(r.Context(), "Stock movement recorded",
		"product_id", movementDto.ProductID, "type", movementDto.MovementType, "qty", *movementDto.Qty)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]any{"message": "Stock movement recorded"})
}

// CurrentStock returns the derived current stock of a single product.
func (h *Handler) CurrentStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request for current stock", "ID", id)
	stock, err := h.service.CurrentStock(r.Context(), id)
	if err != nil {
		if errors.Is(err, ierrors.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for stock query", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error computing current stock", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to compute stock for product with ID %s", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully computed current stock", "ID", id, "stock", stock)
	web.RespondJSON(w, mLogger, http.StatusOK, map[string]any{"id": id, "current_stock": stock})
}

// Summary returns portfolio-level inventory metrics.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request for inventory summary")
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error computing summary", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to compute summary")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, summary)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
