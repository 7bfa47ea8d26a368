package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/domain"
	"github.com/vladislavdragonenkov/roms/internal/service/order"
)

type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" validate:"required"`
	Items      []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Qty       int32  `json:"qty" validate:"required,gt=0"`
}

type CompleteOrderRequest struct {
	Method string `json:"method"`
}

type OrderItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customer_id"`
	Status      string              `json:"status"`
	AmountMinor int64               `json:"amount_minor"`
	Items       []OrderItemResponse `json:"items"`
	Customer    *CustomerResponse   `json:"customer,omitempty"`
	Payment     *PaymentResponse    `json:"payment,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

type OrderHandler struct {
	orders   *order.Service
	timeline domain.TimelineRepository
	validate *validator.Validate
	logger   *log.Entry
}

func NewOrderHandler(orderSvc *order.Service, timeline domain.TimelineRepository, logger *log.Entry) *OrderHandler {
	if logger == nil {
		logger = log.New().WithField("component", "order-handler")
	}
	return &OrderHandler{
		orders:   orderSvc,
		timeline: timeline,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Post("/orders", h.handleCreateOrder)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Post("/orders/{id}/cancel", h.handleCancelOrder)
	router.Post("/orders/{id}/complete", h.handleCompleteOrder)
	router.Post("/orders/{id}/pay", h.handlePayOrder)
	router.Get("/orders/{id}/timeline", h.handleOrderTimeline)
}

func (h *OrderHandler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload CreateOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		h.logger.WithError(err).Warn("failed to decode create order request")
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

	items := make([]order.ItemRequest, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, order.ItemRequest{ProductID: item.ProductID, Qty: item.Qty})
	}

	details, err := h.orders.CreateOrder(payload.CustomerID, items)
	if err != nil {
		h.logger.WithError(err).Warn("failed to create order")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create order"))
		return
	}

	respondWithJSON(w, http.StatusCreated, toOrderResponse(details))
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	details, err := h.orders.GetOrderDetails(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderResponse(details))
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	details, err := h.orders.CancelOrder(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WithError(err).Warn("failed to cancel order")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to cancel order"))
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderResponse(details))
}

func (h *OrderHandler) handleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	var payload CompleteOrderRequest
	if r.Body != nil && r.ContentLength != 0 {
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	details, err := h.orders.MarkOrderCompleted(chi.URLParam(r, "id"), domain.PaymentMethod(payload.Method))
	if err != nil {
		h.logger.WithError(err).Warn("failed to complete order")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to complete order"))
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderResponse(details))
}

func (h *OrderHandler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	var payload CompleteOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	details, err := h.orders.ProcessOrderPayment(chi.URLParam(r, "id"), domain.PaymentMethod(payload.Method))
	if err != nil {
		h.logger.WithError(err).Warn("failed to pay order")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to process order payment"))
		return
	}
	respondWithJSON(w, http.StatusOK, toOrderResponse(details))
}

type TimelineEventResponse struct {
	Type     string    `json:"type"`
	Reason   string    `json:"reason,omitempty"`
	Occurred time.Time `json:"occurred"`
}

func (h *OrderHandler) handleOrderTimeline(w http.ResponseWriter, r *http.Request) {
	if h.timeline == nil {
		respondWithError(w, http.StatusNotFound, "Timeline is not enabled")
		return
	}

	events, err := h.timeline.List(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load order timeline")
		return
	}

	result := make([]TimelineEventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, TimelineEventResponse{
			Type:     event.Type,
			Reason:   event.Reason,
			Occurred: event.Occurred,
		})
	}
	respondWithJSON(w, http.StatusOK, result)
}

// clientMessage скрывает внутренние детали для 5xx-ответов и пробрасывает
// текст доменной ошибки там, где он полезен клиенту.
func clientMessage(err error, fallback string) string {
	if mapErrorToStatusCode(err) >= http.StatusInternalServerError {
		return fallback
	}
	return err.Error()
}

func toOrderResponse(details domain.OrderDetails) OrderResponse {
	items := make([]OrderItemResponse, 0, len(details.Order.Items))
	for _, item := range details.Order.Items {
		items = append(items, OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
		})
	}

	resp := OrderResponse{
		ID:          details.Order.ID,
		CustomerID:  details.Order.CustomerID,
		Status:      string(details.Order.Status),
		AmountMinor: details.Order.AmountMinor,
		Items:       items,
		CreatedAt:   details.Order.CreatedAt,
		UpdatedAt:   details.Order.UpdatedAt,
	}

	if details.Customer.ID != "" {
		customer := toCustomerResponse(details.Customer)
		resp.Customer = &customer
	}
	if details.Payment != nil {
		payment := toPaymentResponse(*details.Payment)
		resp.Payment = &payment
	}
	return resp
}
