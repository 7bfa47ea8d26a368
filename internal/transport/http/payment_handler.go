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
	"github.com/vladislavdragonenkov/roms/internal/service/payment"
)

type ProcessPaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=Cash Card UPI"`
}

type PaymentResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	AmountMinor int64     `json:"amount_minor"`
	Status      string    `json:"status"`
	Method      string    `json:"method,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type PaymentDetailsResponse struct {
	Payment PaymentResponse `json:"payment"`
	Order   OrderResponse   `json:"order"`
}

type PaymentHandler struct {
	payments *payment.Service
	validate *validator.Validate
	logger   *log.Entry
}

func NewPaymentHandler(paymentSvc *payment.Service, logger *log.Entry) *PaymentHandler {
	if logger == nil {
		logger = log.New().WithField("component", "payment-handler")
	}
	return &PaymentHandler{
		payments: paymentSvc,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Get("/payments/{id}", h.handleGetPayment)
	router.Post("/payments/{id}/process", h.handleProcessPayment)
	router.Post("/payments/{id}/refund", h.handleRefundPayment)
}

func (h *PaymentHandler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	details, err := h.payments.Details(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, PaymentDetailsResponse{
		Payment: toPaymentResponse(details.Payment),
		Order:   toOrderResponse(domain.OrderDetails{Order: details.Order}),
	})
}

func (h *PaymentHandler) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var payload ProcessPaymentRequest

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

	processed, err := h.payments.Process(chi.URLParam(r, "id"), domain.PaymentMethod(payload.Method))
	if err != nil {
		h.logger.WithError(err).Warn("failed to process payment")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to process payment"))
		return
	}
	respondWithJSON(w, http.StatusOK, toPaymentResponse(processed))
}

func (h *PaymentHandler) handleRefundPayment(w http.ResponseWriter, r *http.Request) {
	refunded, err := h.payments.Refund(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.WithError(err).Warn("failed to refund payment")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to refund payment"))
		return
	}
	respondWithJSON(w, http.StatusOK, toPaymentResponse(refunded))
}

func toPaymentResponse(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		OrderID:     p.OrderID,
		AmountMinor: p.AmountMinor,
		Status:      string(p.Status),
		Method:      string(p.Method),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
