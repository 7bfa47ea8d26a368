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
	"github.com/vladislavdragonenkov/roms/internal/service/order"
)

type CreateCustomerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerHandler struct {
	catalog  *catalog.Service
	orders   *order.Service
	validate *validator.Validate
	logger   *log.Entry
}

func NewCustomerHandler(catalogSvc *catalog.Service, orderSvc *order.Service, logger *log.Entry) *CustomerHandler {
	if logger == nil {
		logger = log.New().WithField("component", "customer-handler")
	}
	return &CustomerHandler{
		catalog:  catalogSvc,
		orders:   orderSvc,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *CustomerHandler) RegisterRoutes(router chi.Router) {
	router.Post("/customers", h.handleCreateCustomer)
	router.Get("/customers", h.handleListCustomers)
	router.Get("/customers/{id}", h.handleGetCustomer)
	router.Get("/customers/{id}/orders", h.handleListCustomerOrders)
	router.Delete("/customers/{id}", h.handleDeleteCustomer)
}

func (h *CustomerHandler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var payload CreateCustomerRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		h.logger.WithError(err).Warn("failed to decode create customer request")
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

	customer, err := h.catalog.CreateCustomer(domain.Customer{
		Name:  payload.Name,
		Email: payload.Email,
		Phone: payload.Phone,
		City:  payload.City,
	})
	if err != nil {
		h.logger.WithError(err).Warn("failed to create customer")
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func (h *CustomerHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	customers, err := h.catalog.ListCustomers(limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list customers")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list customers")
		return
	}

	result := make([]CustomerResponse, 0, len(customers))
	for _, customer := range customers {
		result = append(result, toCustomerResponse(customer))
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *CustomerHandler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.catalog.GetCustomer(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func (h *CustomerHandler) handleListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	details, err := h.orders.ListCustomerOrders(chi.URLParam(r, "id"), limit)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}

	result := make([]OrderResponse, 0, len(details))
	for _, d := range details {
		result = append(result, toOrderResponse(d))
	}
	respondWithJSON(w, http.StatusOK, result)
}

func (h *CustomerHandler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if _, err := h.catalog.DeleteCustomer(chi.URLParam(r, "id")); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toCustomerResponse(customer domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.Email,
		Phone:     customer.Phone,
		City:      customer.City,
		CreatedAt: customer.CreatedAt,
	}
}
