package handler

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"credit-control/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// DownstreamHandler serves the collaborator surfaces of the credit-control
// suite: notifications, payments, risk, reports and credit profiles. These
// endpoints return representative fixture data so the customer API can be
// exercised end to end without the downstream services deployed.
type DownstreamHandler struct {
	logger *slog.Logger
}

func NewDownstreamHandler(l *slog.Logger) *DownstreamHandler {
	if l == nil {
		panic("logger cannot be nil")
	}
	return &DownstreamHandler{logger: l.With("component", "DownstreamHandler")}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// GetAlerts handles GET /notifications/alerts
// @Summary Active customer alerts
// @Tags Notifications
// @Produce json
// @Success 200 {object} dto.APIResponse "Alerts retrieved"
// @Router /notifications/alerts [get]
func (h *DownstreamHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received alerts request")

	alerts := []map[string]any{
		{
			"alertId": 1, "type": "CREDIT_LIMIT_EXCEEDED", "customerId": 2,
			"customerName": "XYZ Trading Corp", "message": "Credit utilization exceeded 90%",
			"severity": "HIGH", "timestamp": "2025-10-09T07:30:00Z", "status": "ACTIVE",
		},
		{
			"alertId": 2, "type": "PAYMENT_OVERDUE", "customerId": 4,
			"customerName": "Tech Solutions LLC", "message": "Payment overdue by 15 days",
			"severity": "MEDIUM", "timestamp": "2025-10-09T06:15:00Z", "status": "ACTIVE",
		},
		{
			"alertId": 3, "type": "RISK_SCORE_CHANGE", "customerId": 1,
			"customerName": "ABC Manufacturing Ltd", "message": "Risk score improved from 80 to 85",
			"severity": "LOW", "timestamp": "2025-10-09T05:00:00Z", "status": "ACKNOWLEDGED",
		},
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"alerts":             alerts,
		"totalAlerts":        3,
		"activeAlerts":       2,
		"highSeverityAlerts": 1,
	}, "Alerts retrieved successfully")
}

// SendNotification handles POST /notifications/send
// @Summary Send a customer notification
// @Tags Notifications
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse "Notification accepted"
// @Failure 400 {object} dto.APIResponse "Invalid request payload"
// @Router /notifications/send [post]
func (h *DownstreamHandler) SendNotification(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received send notification request")

	var req map[string]any
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode notification request", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"notificationId": fmt.Sprintf("NOT_%d", time.Now().UnixMilli()),
		"status":         "SENT",
		"recipient":      req["recipient"],
		"channel":        req["channel"],
		"message":        req["message"],
		"sentAt":         time.Now().UTC().Format(time.RFC3339),
	}, "Notification sent successfully")
}

// GetNotificationHistory handles GET /notifications/history/{customerID}
// @Summary Notification history for a customer
// @Tags Notifications
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.APIResponse "Notification history retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Router /notifications/history/{customerID} [get]
func (h *DownstreamHandler) GetNotificationHistory(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	history := []map[string]any{
		{
			"notificationId": "NOT_1728123456789", "type": "PAYMENT_REMINDER",
			"message": "Payment due in 3 days", "channel": "EMAIL",
			"status": "DELIVERED", "sentAt": "2025-10-06T10:00:00Z",
		},
		{
			"notificationId": "NOT_1728023456789", "type": "CREDIT_LIMIT_UPDATE",
			"message": "Your credit limit has been increased to $500,000", "channel": "SMS",
			"status": "DELIVERED", "sentAt": "2025-10-01T14:30:00Z",
		},
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"customerId":    customerID,
		"notifications": history,
		"totalSent":     2,
		"deliveryRate":  100.0,
	}, "Notification history retrieved successfully")
}

// GetPaymentHistory handles GET /payments/history/{customerID}
// @Summary Payment history for a customer
// @Tags Payments
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.APIResponse "Payment history retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Router /payments/history/{customerID} [get]
func (h *DownstreamHandler) GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	payments := []map[string]any{
		{"paymentId": 1, "amount": money("25000.00"), "date": "2025-10-01", "status": "COMPLETED", "method": "BANK_TRANSFER"},
		{"paymentId": 2, "amount": money("15000.00"), "date": "2025-09-15", "status": "COMPLETED", "method": "CHECK"},
		{"paymentId": 3, "amount": money("30000.00"), "date": "2025-08-30", "status": "COMPLETED", "method": "WIRE_TRANSFER"},
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"customerId":     customerID,
		"payments":       payments,
		"totalPaid":      money("70000.00"),
		"averagePayment": money("23333.33"),
		"onTimePayments": 3,
		"latePayments":   0,
	}, "Payment history retrieved successfully")
}

// ProcessPayment handles POST /payments/process
// @Summary Initiate a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse "Payment accepted for processing"
// @Failure 400 {object} dto.APIResponse "Invalid request payload"
// @Router /payments/process [post]
func (h *DownstreamHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received process payment request")

	var req map[string]any
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode payment request", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"paymentId":           rand.Intn(10000),
		"status":              "PROCESSING",
		"amount":              req["amount"],
		"customerId":          req["customerId"],
		"method":              req["method"],
		"transactionId":       fmt.Sprintf("TXN%d", time.Now().UnixMilli()),
		"estimatedCompletion": "2025-10-10T10:00:00Z",
	}, "Payment processing initiated")
}

// GetPaymentSummary handles GET /payments/summary
// @Summary Aggregate payment figures
// @Tags Payments
// @Produce json
// @Success 200 {object} dto.APIResponse "Payment summary retrieved"
// @Router /payments/summary [get]
func (h *DownstreamHandler) GetPaymentSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"totalPaymentsToday":    15,
		"totalAmountToday":      money("450000.00"),
		"totalPaymentsMonth":    234,
		"totalAmountMonth":      money("5600000.00"),
		"pendingPayments":       8,
		"failedPayments":        2,
		"averageProcessingTime": "2.5 hours",
	}, "Payment summary retrieved successfully")
}

// GetRiskAssessment handles GET /risk/assessment/{customerID}
// @Summary Risk assessment for a customer
// @Tags Risk
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.APIResponse "Risk assessment retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Router /risk/assessment/{customerID} [get]
func (h *DownstreamHandler) GetRiskAssessment(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"customerId":      customerID,
		"riskScore":       85,
		"riskLevel":       "LOW",
		"riskFactors":     []string{"Payment history: Excellent", "Industry: Stable", "Transaction volume: Good"},
		"recommendations": []string{"Maintain current credit terms", "Monitor monthly transactions"},
		"lastAssessment":  "2025-10-09",
		"nextAssessment":  "2025-11-09",
	}, "Risk assessment retrieved successfully")
}

// GetRiskDashboard handles GET /risk/monitoring/dashboard
// @Summary Portfolio-wide risk dashboard
// @Tags Risk
// @Produce json
// @Success 200 {object} dto.APIResponse "Risk dashboard retrieved"
// @Router /risk/monitoring/dashboard [get]
func (h *DownstreamHandler) GetRiskDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"totalCustomers":  5,
		"highRiskCount":   1,
		"mediumRiskCount": 2,
		"lowRiskCount":    2,
		"avgRiskScore":    78.5,
		"alertsCount":     3,
		"trendsDirection": "IMPROVING",
	}, "Risk monitoring dashboard data retrieved")
}

// GetReportDashboard handles GET /reports/dashboard
// @Summary Business dashboard figures
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.APIResponse "Dashboard data retrieved"
// @Router /reports/dashboard [get]
func (h *DownstreamHandler) GetReportDashboard(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"totalCustomers":         5,
		"totalCreditLimit":       money("2500000.00"),
		"totalOutstanding":       money("850000.00"),
		"collectionRate":         94.5,
		"averageRiskScore":       78.5,
		"monthlyGrowth":          12.3,
		"topPerformingCustomers": 3,
		"highRiskCustomers":      1,
	}, "Dashboard data retrieved successfully")
}

// GetReportTrends handles GET /reports/analytics/trends
// @Summary Credit utilization trends
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.APIResponse "Trend analysis retrieved"
// @Router /reports/analytics/trends [get]
func (h *DownstreamHandler) GetReportTrends(w http.ResponseWriter, r *http.Request) {
	trends := []map[string]any{
		{"month": "2025-07", "creditLimit": money("2200000"), "utilization": 32.5},
		{"month": "2025-08", "creditLimit": money("2350000"), "utilization": 34.2},
		{"month": "2025-09", "creditLimit": money("2450000"), "utilization": 33.8},
		{"month": "2025-10", "creditLimit": money("2500000"), "utilization": 34.0},
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"trends":     trends,
		"growthRate": 13.6,
		"forecastNext3Months": []map[string]any{
			{"month": "2025-11", "forecastCreditLimit": money("2650000")},
			{"month": "2025-12", "forecastCreditLimit": money("2800000")},
			{"month": "2026-01", "forecastCreditLimit": money("2950000")},
		},
	}, "Trend analysis retrieved successfully")
}

// GenerateReport handles GET /reports/generate/{reportType}
// @Summary Kick off report generation
// @Tags Reports
// @Produce json
// @Param reportType path string true "Report type"
// @Success 200 {object} dto.APIResponse "Report generation started"
// @Router /reports/generate/{reportType} [get]
func (h *DownstreamHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	reportType := chi.URLParam(r, "reportType")
	reportID := fmt.Sprintf("RPT_%d", time.Now().UnixMilli())

	h.logger.InfoContext(r.Context(), "Report generation requested", slog.String("reportType", reportType))

	respondJSON(w, r, http.StatusOK, map[string]any{
		"reportId":            reportID,
		"reportType":          strings.ToUpper(reportType),
		"status":              "GENERATING",
		"estimatedCompletion": "2025-10-09T08:30:00Z",
		"format":              "PDF",
		"downloadUrl":         "/api/v1/reports/download/" + reportID,
	}, "Report generation initiated")
}

// GetCreditProfile handles GET /credit/profile/{customerID}
// @Summary Credit profile for a customer
// @Tags Credit
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.APIResponse "Credit profile retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Router /credit/profile/{customerID} [get]
func (h *DownstreamHandler) GetCreditProfile(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"customerId":      customerID,
		"creditLimit":     money("500000.00"),
		"availableCredit": money("350000.00"),
		"usedCredit":      money("150000.00"),
		"creditRating":    "A",
		"riskScore":       85,
		"utilization":     30.0,
		"lastReviewDate":  "2025-10-01",
		"nextReviewDate":  "2026-01-01",
	}, "Credit profile retrieved successfully")
}

// AssessCreditRisk handles GET /credit/assessment/{customerID}
// @Summary Credit risk assessment for a customer
// @Tags Credit
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.APIResponse "Credit risk assessment completed"
// @Failure 400 {object} dto.APIResponse "Invalid customer ID"
// @Router /credit/assessment/{customerID} [get]
func (h *DownstreamHandler) AssessCreditRisk(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"customerId":            customerID,
		"currentRiskScore":      85,
		"newRiskScore":          88,
		"riskLevel":             "LOW",
		"recommendedCreditLimit": money("600000.00"),
		"riskFactors":           []string{"Excellent payment history", "Stable industry", "Good transaction volume"},
		"assessmentDate":        time.Now().UTC().Format(time.RFC3339),
	}, "Credit risk assessment completed")
}

// GetCreditSummary handles GET /credit/summary
// @Summary Portfolio-wide credit summary
// @Tags Credit
// @Produce json
// @Success 200 {object} dto.APIResponse "Credit summary retrieved"
// @Router /credit/summary [get]
func (h *DownstreamHandler) GetCreditSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]any{
		"totalCreditLimit":     money("2500000.00"),
		"totalUsedCredit":      money("850000.00"),
		"totalAvailableCredit": money("1650000.00"),
		"averageUtilization":   34.0,
		"totalCustomers":       5,
		"highRiskCustomers":    1,
		"mediumRiskCustomers":  2,
		"lowRiskCustomers":     2,
	}, "Credit summary retrieved successfully")
}
