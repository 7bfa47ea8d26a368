package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/service/catalog"
)

type CreateProductRequest struct {
	SKU        string `json:"sku" validate:"required"`
	Name       string `json:"name" validate:"required"`
	PriceMinor int64  `json:"price_minor" validate:"gte=0"`
	Stock      int32  `json:"stock" validate:"gte=0"`
	Category   string `json:"category"`
}

type UpdateProductRequest struct {
	SKU        string `json:"sku" validate:"required"`
	Name       string `json:"name" validate:"required"`
	PriceMinor int64  `json:"price_minor" validate:"gte=0"`
	Stock      int32  `json:"stock" validate:"gte=0"`
	Category   string `json:"category"`
}

type RestockRequest struct {
	Qty int32 `json:"qty" validate:"required,gt=0"`
}

type ProductResponse struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceMinor int64     `json:"price_minor"`
	Stock      int32     `json:"stock"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ProductHandler struct {
	catalog  *catalog.Service
	validate *validator.Validate
	logger   *log.Entry
}

func NewProductHandler(catalogSvc *catalog.Service, logger *log.Entry) *ProductHandler {
	if logger == nil {
		logger = log.New().WithField("component", "product-handler")
	}
	return &ProductHandler{
		catalog:  catalogSvc,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router) {
	router.Post("/products", h.handleCreateProduct)
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Put("/products/{id}", h.handleUpdateProduct)
	router.Post("/products/{id}/restock", h.handleRestockProduct)
	router.Delete("/products/{id}", h.handleDeleteProduct)
}

func (h *ProductHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var payload CreateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		h.logger.WithError(err).Warn("failed to decode create product request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithValidationErrors(w, validationErrors)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	product, err := h.catalog.CreateProduct(domain.Product{
		SKU:        payload.SKU,
		Name:       payload.Name,
		PriceMinor: payload.PriceMinor,
		Stock:      payload.Stock,
		Category:   payload.Category,
	})
	if err != nil {
		h.logger.WithError(err).Warn("failed to create product")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, toProductResponse(product))
}

func (h *ProductHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{Category: r.URL.Query().Get("category")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		filter.Limit = limit
	}

	products, err := h.catalog.ListProducts(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to list products")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list products")
		return
	}

	result := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		result = append(result, toProductResponse(product))
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.GetProduct(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var payload UpdateProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		h.logger.WithError(err).Warn("failed to decode update product request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithValidationErrors(w, validationErrors)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	product, err := h.catalog.UpdateProduct(domain.Product{
		ID:         chi.URLParam(r, "id"),
		SKU:        payload.SKU,
		Name:       payload.Name,
		PriceMinor: payload.PriceMinor,
		Stock:      payload.Stock,
		Category:   payload.Category,
	})
	if err != nil {
		h.logger.WithError(err).Warn("failed to update product")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) handleRestockProduct(w http.ResponseWriter, r *http.Request) {
	var payload RestockRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithValidationErrors(w, validationErrors)
		} else {
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	product, err := h.catalog.RestockProduct(chi.URLParam(r, "id"), payload.Qty)
	if err != nil {
		h.logger.WithError(err).Warn("failed to restock product")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *ProductHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if _, err := h.catalog.DeleteProduct(chi.URLParam(r, "id")); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toProductResponse(product domain.Product) ProductResponse {
	return ProductResponse{
		ID:         product.ID,
		SKU:        product.SKU,
		Name:       product.Name,
		PriceMinor: product.PriceMinor,
		Stock:      product.Stock,
		Category:   product.Category,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
}
