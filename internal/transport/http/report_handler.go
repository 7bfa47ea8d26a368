package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/roms/internal/service/reporting"
)

type ReportHandler struct {
	reports *reporting.Service
	logger  *log.Entry
}

func NewReportHandler(reports *reporting.Service, logger *log.Entry) *ReportHandler {
	if logger == nil {
		logger = log.New().WithField("component", "report-handler")
	}
	return &ReportHandler{reports: reports, logger: logger}
}

func (h *ReportHandler) RegisterRoutes(router chi.Router) {
	router.Get("/reports/summary", h.handleSummary)
	router.Get("/reports/top-products", h.handleTopProducts)
	router.Get("/reports/revenue", h.handleRevenue)
	router.Get("/reports/orders-per-customer", h.handleOrdersPerCustomer)
	router.Get("/reports/repeat-customers", h.handleRepeatCustomers)
}

func (h *ReportHandler) handleSummary(w http.ResponseWriter, _ *http.Request) {
	summary, err := h.reports.Summary()
	if err != nil {
		h.logger.WithError(err).Error("failed to build sales summary")
		respondWithError(w, http.StatusInternalServerError, "Failed to build sales summary")
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	top, err := h.reports.TopSellingProducts(limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to build top products report")
		respondWithError(w, http.StatusInternalServerError, "Failed to build top products report")
		return
	}
	respondWithJSON(w, http.StatusOK, top)
}

func (h *ReportHandler) handleRevenue(w http.ResponseWriter, r *http.Request) {
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid since parameter, expected RFC3339")
			return
		}
		since = parsed
	}

	revenue, err := h.reports.RevenueSince(since)
	if err != nil {
		h.logger.WithError(err).Error("failed to compute revenue")
		respondWithError(w, http.StatusInternalServerError, "Failed to compute revenue")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"since":         since,
		"revenue_minor": revenue,
	})
}

func (h *ReportHandler) handleOrdersPerCustomer(w http.ResponseWriter, _ *http.Request) {
	counts, err := h.reports.OrdersPerCustomer()
	if err != nil {
		h.logger.WithError(err).Error("failed to build orders per customer report")
		respondWithError(w, http.StatusInternalServerError, "Failed to build orders per customer report")
		return
	}
	respondWithJSON(w, http.StatusOK, counts)
}

func (h *ReportHandler) handleRepeatCustomers(w http.ResponseWriter, r *http.Request) {
	min := 2
	if raw := r.URL.Query().Get("min"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid min parameter")
			return
		}
		min = parsed
	}

	customers, err := h.reports.CustomersWithMultipleOrders(min)
	if err != nil {
		h.logger.WithError(err).Error("failed to build repeat customers report")
		respondWithError(w, http.StatusInternalServerError, "Failed to build repeat customers report")
		return
	}
	respondWithJSON(w, http.StatusOK, customers)
}
